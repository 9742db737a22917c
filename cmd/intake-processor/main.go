package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/clinicore/customer-intake/internal/models"
	"github.com/clinicore/customer-intake/internal/services"
)

var (
	intakeInstance *services.IntakeFunction
	once           sync.Once
	initErr        error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes the storage
	// finalize event here.
	functions.CloudEvent("ProcessCustomerFile", processCustomerFile)
}

// main is required by the Go Functions Framework.
func main() {}

// processCustomerFile is the Cloud Function entry point. Each invocation
// carries one uploaded object; it is handed to the pipeline as a
// single-element batch.
func processCustomerFile(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		intakeInstance, initErr = services.NewIntakeProcessor(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	batch := []models.FileNotification{{
		StorageLocation: gcsEvent.Bucket,
		ObjectKey:       gcsEvent.Name,
	}}
	return intakeInstance.ProcessBatch(ctx, batch)
}

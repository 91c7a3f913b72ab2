package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"signing-backend/internal/bootstrap"
	"signing-backend/internal/notifications"
	"signing-backend/internal/shared/config"
	"signing-backend/internal/shared/metrics"
	"signing-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	delivery notifications.Dispatcher
)

func initDelivery() {
	delivery = bootstrap.NewDelivery(config.Load())
}

// handler never reports batch item failures: notifications are delivered at
// most once, so a failed send is logged and dropped instead of redriven.
func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initDelivery)

	for _, record := range event.Records {
		metrics.IncNotificationJobsReceived()
		if err := workerproc.HandleMessage(ctx, delivery, record.Body); err != nil {
			metrics.IncNotificationJobsDropped()
			log.Printf("notification dropped message_id=%s error=%v", record.MessageId, err)
		}
	}

	return events.SQSEventResponse{BatchItemFailures: []events.SQSBatchItemFailure{}}, nil
}

func main() {
	lambda.Start(handler)
}

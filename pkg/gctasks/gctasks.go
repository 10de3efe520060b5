package gctasks

import (
	"context"
	"fmt"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Client schedules deferred HTTP callbacks, used to call the service back
// when a stock's activation codes reach their expiration instant.
type Client interface {
	CreateTask(ctx context.Context, queueID string, request Request) error
	DeferCreateTaskAt(ctx context.Context, queueID string, request Request, schedule time.Time) error
	Close() error
}

type Request struct {
	URL    string
	Method cloudtaskspb.HttpMethod
	Header map[string]string
	Body   []byte
}

type tasksClient struct {
	projectID  string
	locationID string
	logger     *logrus.Logger
	client     *cloudtasks.Client
}

func NewGCTasks(logger *logrus.Logger, projectID string, locationID string, credsJSON []byte) Client {
	c, err := cloudtasks.NewClient(context.Background(), option.WithCredentialsJSON(credsJSON))
	if err != nil {
		logger.WithField("object", "gctasks").Error(err)
		return nil
	}

	return &tasksClient{
		projectID:  projectID,
		locationID: locationID,
		logger:     logger,
		client:     c,
	}
}

func (tc *tasksClient) Close() error {
	return tc.client.Close()
}

func (tc *tasksClient) queuePath(queueID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s", tc.projectID, tc.locationID, queueID)
}

func (tc *tasksClient) CreateTask(ctx context.Context, queueID string, request Request) error {
	return tc.createTask(ctx, queueID, request, nil)
}

func (tc *tasksClient) DeferCreateTaskAt(ctx context.Context, queueID string, request Request, schedule time.Time) error {
	return tc.createTask(ctx, queueID, request, &timestamppb.Timestamp{Seconds: schedule.Unix()})
}

func (tc *tasksClient) createTask(ctx context.Context, queueID string, request Request, schedule *timestamppb.Timestamp) error {
	task := &cloudtaskspb.Task{
		MessageType: &cloudtaskspb.Task_HttpRequest{
			HttpRequest: &cloudtaskspb.HttpRequest{
				Url:        request.URL,
				HttpMethod: request.Method,
				Headers:    request.Header,
				Body:       request.Body,
			},
		},
		ScheduleTime: schedule,
	}

	_, err := tc.client.CreateTask(ctx, &cloudtaskspb.CreateTaskRequest{
		Parent: tc.queuePath(queueID),
		Task:   task,
	})
	if err != nil {
		tc.logger.WithContext(ctx).WithFields(logrus.Fields{
			"object":  "gctasks",
			"queueId": queueID,
		}).Error(err)
		return err
	}

	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	sc "github.com/dmitrijs2005/taskhub/internal/server/config"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/tasks"
)

// Seams for testing the presign flow without AWS.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// TaskInput is the mutable subset of a task accepted from handlers.
// Description and DueDate are pointers so a partial update can distinguish
// "field omitted" (nil, keep the stored value) from "set to empty".
type TaskInput struct {
	Title       string
	Description *string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// TaskService implements task CRUD, attachment presigning, and the due-soon
// notification sweep.
type TaskService struct {
	db            dbx.DBTX
	repomanager   repomanager.RepositoryManager
	config        *sc.Config
	notifications *NotificationService
}

// NewTaskService constructs a TaskService. notifications may be nil; then
// the due-soon sweep only logs nothing and delivers nothing.
func NewTaskService(db dbx.DBTX, m repomanager.RepositoryManager, cfg *sc.Config, notifications *NotificationService) *TaskService {
	return &TaskService{
		db:            db,
		repomanager:   m,
		config:        cfg,
		notifications: notifications,
	}
}

// Create validates the input and stores a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in TaskInput) (*models.Task, error) {
	if in.Status == "" {
		in.Status = models.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := validateTask(in.Title, in.Status, in.Priority); err != nil {
		return nil, err
	}

	task := &models.Task{
		OwnerID:  ownerID,
		Title:    in.Title,
		Status:   in.Status,
		Priority: in.Priority,
		DueDate:  in.DueDate,
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	return s.repomanager.Tasks(s.db).Create(ctx, task)
}

// Get returns the task by id.
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).GetByID(ctx, id)
}

// GetOwnerID resolves a task to its owner. It backs the ownership check in
// the authorization gate.
func (s *TaskService) GetOwnerID(ctx context.Context, id string) (string, error) {
	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return task.OwnerID, nil
}

// ListByOwner returns the owner's tasks, filtered and paginated.
func (s *TaskService) ListByOwner(ctx context.Context, ownerID string, f tasks.Filter) ([]*models.Task, error) {
	if f.Status != "" && !models.ValidStatus(f.Status) {
		ve := newValidationError()
		ve.Fields["status"] = "status must be todo, in_progress or done"
		return nil, ve
	}
	return s.repomanager.Tasks(s.db).ListByOwner(ctx, ownerID, f)
}

// Update validates and stores changes to an existing task. An omitted field
// keeps its stored value; an explicit empty description clears it. Ownership
// is checked by the authorization gate before this is called.
func (s *TaskService) Update(ctx context.Context, id string, in TaskInput) (*models.Task, error) {
	current, err := s.repomanager.Tasks(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		current.Title = in.Title
	}
	if in.Description != nil {
		current.Description = *in.Description
	}
	if in.Status != "" {
		current.Status = in.Status
	}
	if in.Priority != "" {
		current.Priority = in.Priority
	}
	if in.DueDate != nil {
		current.DueDate = in.DueDate
	}

	if err := validateTask(current.Title, current.Status, current.Priority); err != nil {
		return nil, err
	}
	return s.repomanager.Tasks(s.db).Update(ctx, current)
}

// Delete removes the task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Tasks(s.db).Delete(ctx, id)
}

// randomStorageKey spreads attachment objects by date so bucket listings
// stay usable.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("attachments/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *TaskService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// AttachmentUploadURL issues a presigned PUT URL for the task's attachment
// and records the object key on the task. The client uploads directly to the
// object store; the server never proxies the bytes.
func (s *TaskService) AttachmentUploadURL(ctx context.Context, taskID string) (string, error) {
	if _, err := s.repomanager.Tasks(s.db).GetByID(ctx, taskID); err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("presign client: %w", err)
	}

	key := randomStorageKey()
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := s.repomanager.Tasks(s.db).SetAttachmentKey(ctx, taskID, key); err != nil {
		return "", err
	}

	return req.URL, nil
}

// AttachmentDownloadURL issues a presigned GET URL for the task's stored
// attachment. A task without an attachment yields common.ErrorNotFound.
func (s *TaskService) AttachmentDownloadURL(ctx context.Context, taskID string) (string, error) {
	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}
	if task.AttachmentKey == "" {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("presign client: %w", err)
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(task.AttachmentKey),
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}

// NotifyDueSoon dispatches a task_due notification for every unfinished task
// due within the window and marks it as notified, so repeated sweeps over an
// unchanged task are no-ops. Owners that no longer resolve are skipped
// without marking, and get retried on the next sweep.
func (s *TaskService) NotifyDueSoon(ctx context.Context, window time.Duration) error {
	if s.notifications == nil {
		return nil
	}

	tasksRepo := s.repomanager.Tasks(s.db)
	due, err := tasksRepo.ListDueBefore(ctx, time.Now().Add(window))
	if err != nil {
		return err
	}

	usersRepo := s.repomanager.Users(s.db)
	for _, task := range due {
		if task.DueDate == nil {
			continue
		}
		owner, err := usersRepo.GetByID(ctx, task.OwnerID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return err
		}
		s.notifications.Dispatch(ctx, owner.ID, owner.Email, models.NotificationTaskDue,
			fmt.Sprintf("Task %q is due soon", task.Title),
			fmt.Sprintf("Hi %s, your task %q is due %s.", owner.Name, task.Title, task.DueDate.Format(time.RFC1123)))
		if err := tasksRepo.MarkDueNotified(ctx, task.ID); err != nil {
			return err
		}
	}

	return nil
}

package core

import "context"

// TransformClient submits an image and a prompt to the AI service and returns
// the fully accumulated response text.
type TransformClient interface {
	Transform(ctx context.Context, image []byte, prompt string) (string, error)
}

// JobRunner executes one job. Implementations must not panic or return
// errors to the caller; every outcome is recorded through the ImageStore.
type JobRunner interface {
	Run(ctx context.Context, job *Job)
}

// Preprocessor rewrites raw image bytes before they are uploaded.
type Preprocessor interface {
	Prepare(image []byte) ([]byte, error)
}

// QueueService is the caller-facing side of the scheduler.
type QueueService interface {
	Enqueue(imageID int64, style string, userID int64, priority int) (uint64, error)
	Status() QueueStatus
}

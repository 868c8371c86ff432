// Package konan holds the plain data types exchanged with the Konan platform.
package konan

import "time"

// Credentials are the email/password pair used for a password login.
type Credentials struct {
	Email    string
	Password string
}

// Tokens is the access/refresh JWT pair returned by a login.
type Tokens struct {
	Access  string
	Refresh string
}

// Prediction is a single prediction made by a deployment. Features and
// Feedback are only populated when listing historical predictions.
type Prediction struct {
	UUID     string
	Output   any
	Features any
	Feedback any
}

// PredictionsPage is one raw page of the prediction listing.
type PredictionsPage struct {
	Count    *int
	Next     *string
	Previous *string
	Results  []map[string]any
}

// TimeWindow bounds an evaluation or a prediction listing.
type TimeWindow struct {
	StartTime time.Time
	EndTime   time.Time
}

type FeedbackSubmission struct {
	PredictionUUID string
	Target         any
}

// FeedbackStatus is the per-prediction outcome of a feedback submission.
type FeedbackStatus struct {
	PredictionUUID string
	Status         int
	Message        string
}

type FeedbacksResult struct {
	Statuses []FeedbackStatus
	Success  int
	Failure  int
	Total    int
}

type DockerCredentials struct {
	Username string
	Password string
}

type DockerImage struct {
	URL         string
	ExposedPort int
}

type Deployment struct {
	UUID      string
	Name      string
	CreatedAt time.Time
}

type Model struct {
	UUID      string
	Name      string
	CreatedAt time.Time
	State     ModelState
}

type ModelCreationRequest struct {
	Name              string
	DockerCredentials *DockerCredentials
	DockerImage       DockerImage
	State             ModelState
}

type DeploymentCreationRequest struct {
	Name  string
	Model ModelCreationRequest
}

// DeploymentError describes a validation failure reported while creating a
// deployment. The deployment itself may still have been created.
type DeploymentError struct {
	Field   DeploymentErrorType
	Message string
}

// DeploymentCreationResponse is the result of creating a deployment. Model is
// nil when the server does not report the initial model.
type DeploymentCreationResponse struct {
	Deployment    Deployment
	Model         *Model
	Errors        []DeploymentError
	ContainerLogs any
}

// HasErrors reports whether the server flagged any validation problems.
func (r *DeploymentCreationResponse) HasErrors() bool {
	return len(r.Errors) > 0
}

type ProjectCreationRequest struct {
	Name        string
	Description string
}

// LiveModelSwitchState is the body of a deployment level model switch.
// NewLiveModelUUID is empty when no model is being promoted.
type LiveModelSwitchState struct {
	SwitchTo         ModelState
	NewLiveModelUUID string
}

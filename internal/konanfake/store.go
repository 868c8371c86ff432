package konanfake

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-konan-sdk/konan"
)

var ErrNotFound = errors.New("not found")

type deployment struct {
	konan.Deployment
	models      []*konan.Model
	predictions []konan.Prediction
}

// Store keeps the deployments, models and predictions served by the fake.
type Store struct {
	deployments map[string]*deployment
	modelOwner  map[string]string // model uuid to deployment uuid
	lock        sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		deployments: make(map[string]*deployment),
		modelOwner:  make(map[string]string),
	}
}

// AddDeployment creates an empty deployment.
func (s *Store) AddDeployment(name string) konan.Deployment {
	s.lock.Lock()
	defer s.lock.Unlock()

	d := &deployment{Deployment: konan.Deployment{
		UUID:      uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}}
	s.deployments[d.UUID] = d
	return d.Deployment
}

// AddModel attaches a new model to a deployment.
func (s *Store) AddModel(deploymentUUID, name string, state konan.ModelState) (konan.Model, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	d, ok := s.deployments[deploymentUUID]
	if !ok {
		return konan.Model{}, ErrNotFound
	}
	m := &konan.Model{
		UUID:      uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		State:     state,
	}
	d.models = append(d.models, m)
	s.modelOwner[m.UUID] = deploymentUUID
	return *m, nil
}

func (s *Store) Models(deploymentUUID string) ([]konan.Model, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	d, ok := s.deployments[deploymentUUID]
	if !ok {
		return nil, ErrNotFound
	}
	models := make([]konan.Model, 0, len(d.models))
	for _, m := range d.models {
		models = append(models, *m)
	}
	return models, nil
}

// SwitchLive moves the current live model to switchTo and, when given,
// promotes newLive.
func (s *Store) SwitchLive(deploymentUUID string, switchTo konan.ModelState, newLive string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	d, ok := s.deployments[deploymentUUID]
	if !ok {
		return ErrNotFound
	}
	for _, m := range d.models {
		if m.State == konan.ModelStateLive {
			m.State = switchTo
		}
	}
	if newLive == "" {
		return nil
	}
	for _, m := range d.models {
		if m.UUID == newLive {
			m.State = konan.ModelStateLive
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) SetModelState(modelUUID string, state konan.ModelState) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	m, err := s.findModel(modelUUID)
	if err != nil {
		return err
	}
	m.State = state
	return nil
}

func (s *Store) DeleteModel(modelUUID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	owner, ok := s.modelOwner[modelUUID]
	if !ok {
		return ErrNotFound
	}
	d := s.deployments[owner]
	for i, m := range d.models {
		if m.UUID == modelUUID {
			d.models = append(d.models[:i], d.models[i+1:]...)
			break
		}
	}
	delete(s.modelOwner, modelUUID)
	return nil
}

func (s *Store) DeleteDeployment(deploymentUUID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	d, ok := s.deployments[deploymentUUID]
	if !ok {
		return ErrNotFound
	}
	for _, m := range d.models {
		delete(s.modelOwner, m.UUID)
	}
	delete(s.deployments, deploymentUUID)
	return nil
}

// AddPrediction records a prediction against a deployment.
func (s *Store) AddPrediction(deploymentUUID string, features, output any) (konan.Prediction, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	d, ok := s.deployments[deploymentUUID]
	if !ok {
		return konan.Prediction{}, ErrNotFound
	}
	p := konan.Prediction{UUID: uuid.New().String(), Output: output, Features: features}
	d.predictions = append(d.predictions, p)
	return p, nil
}

// SetFeedback stores a target on a prediction.
func (s *Store) SetFeedback(deploymentUUID, predictionUUID string, target any) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	d, ok := s.deployments[deploymentUUID]
	if !ok {
		return ErrNotFound
	}
	for i := range d.predictions {
		if d.predictions[i].UUID == predictionUUID {
			d.predictions[i].Feedback = target
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) Predictions(deploymentUUID string) ([]konan.Prediction, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	d, ok := s.deployments[deploymentUUID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]konan.Prediction(nil), d.predictions...), nil
}

func (s *Store) findModel(modelUUID string) (*konan.Model, error) {
	owner, ok := s.modelOwner[modelUUID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, m := range s.deployments[owner].models {
		if m.UUID == modelUUID {
			return m, nil
		}
	}
	return nil, ErrNotFound
}

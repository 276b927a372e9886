// Package memory is an in-process implementation of every workflow
// repository. Values are copied on the way in and out so callers cannot
// mutate stored state by accident.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/domain/interview"
	"hrdesk/recruitment-service/internal/domain/offer"
	"hrdesk/recruitment-service/internal/domain/onboarding"
)

var (
	_ application.Repository = (*Store)(nil)
	_ interview.Repository   = (*Store)(nil)
	_ offer.Repository       = (*Store)(nil)
	_ onboarding.Repository  = (*Store)(nil)
)

// Store holds all entities behind one mutex.
type Store struct {
	mu           sync.Mutex
	applications map[string]application.Application
	requisitions map[string]application.Requisition
	history      []application.History
	interviews   map[string]interview.Interview
	assessments  map[string]interview.Assessment // key: interviewID + "/" + interviewerID
	offers       map[string]offer.Offer
	onboardings  map[string]onboarding.Onboarding
	contracts    map[string]onboarding.Contract
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		applications: make(map[string]application.Application),
		requisitions: make(map[string]application.Requisition),
		interviews:   make(map[string]interview.Interview),
		assessments:  make(map[string]interview.Assessment),
		offers:       make(map[string]offer.Offer),
		onboardings:  make(map[string]onboarding.Onboarding),
		contracts:    make(map[string]onboarding.Contract),
	}
}

// ─── Applications ────────────────────────────────────────────────────────────

// PutApplication inserts or replaces an application. Submission happens
// outside the engine, so this is the seeding entry point.
func (s *Store) PutApplication(app application.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.ID] = cloneApplication(app)
}

// PutRequisition inserts or replaces a requisition.
func (s *Store) PutRequisition(req application.Requisition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requisitions[req.ID] = req
}

func (s *Store) GetApplication(_ context.Context, id string) (*application.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, common.NotFound("application", id)
	}
	out := cloneApplication(app)
	return &out, nil
}

// UpdateApplication stores app and appends h under one lock. A history
// record that cannot be stored leaves the application unchanged.
func (s *Store) UpdateApplication(_ context.Context, app *application.Application, h *application.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[app.ID]; !ok {
		return common.NotFound("application", app.ID)
	}
	if h != nil {
		if h.ApplicationID != app.ID {
			return common.NewError(common.CodeInternal, "history record belongs to another application", nil)
		}
		if slices.ContainsFunc(s.history, func(prev application.History) bool { return prev.ID == h.ID }) {
			return common.NewError(common.CodeConflict, "history record already exists", nil)
		}
		s.history = append(s.history, *h)
	}
	s.applications[app.ID] = cloneApplication(*app)
	return nil
}

func (s *Store) GetRequisition(_ context.Context, id string) (*application.Requisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requisitions[id]
	if !ok {
		return nil, common.NotFound("requisition", id)
	}
	return &req, nil
}

// ListHistory returns the application's records oldest first.
func (s *Store) ListHistory(_ context.Context, applicationID string) ([]application.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []application.History
	for _, h := range s.history {
		if h.ApplicationID == applicationID {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangedAt.Before(out[j].ChangedAt) })
	return out, nil
}

// ─── Interviews ──────────────────────────────────────────────────────────────

func (s *Store) CreateInterview(_ context.Context, iv *interview.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[iv.ID]; ok {
		return common.NewError(common.CodeConflict, "interview already exists", nil)
	}
	s.interviews[iv.ID] = cloneInterview(*iv)
	return nil
}

func (s *Store) GetInterview(_ context.Context, id string) (*interview.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[id]
	if !ok {
		return nil, common.NotFound("interview", id)
	}
	out := cloneInterview(iv)
	return &out, nil
}

func (s *Store) UpdateInterview(_ context.Context, iv *interview.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[iv.ID]; !ok {
		return common.NotFound("interview", iv.ID)
	}
	s.interviews[iv.ID] = cloneInterview(*iv)
	return nil
}

func (s *Store) DeleteInterview(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[id]; !ok {
		return common.NotFound("interview", id)
	}
	delete(s.interviews, id)
	return nil
}

func (s *Store) ListPanelInterviews(_ context.Context, employeeID string, from, to time.Time) ([]interview.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []interview.Interview
	for _, iv := range s.interviews {
		if iv.Status == interview.StatusCancelled || !slices.Contains(iv.Panel, employeeID) {
			continue
		}
		if iv.ScheduledDate.After(from) && iv.ScheduledDate.Before(to) {
			out = append(out, cloneInterview(iv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out, nil
}

// InterviewCount reports how many interviews are stored, cancelled included.
func (s *Store) InterviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.interviews)
}

func (s *Store) SaveAssessment(_ context.Context, a *interview.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := a.InterviewID + "/" + a.InterviewerID
	if prev, ok := s.assessments[key]; ok {
		a.ID = prev.ID
	}
	s.assessments[key] = *a
	return nil
}

func (s *Store) ListAssessments(_ context.Context, interviewID string) ([]interview.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []interview.Assessment
	for _, a := range s.assessments {
		if a.InterviewID == interviewID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InterviewerID < out[j].InterviewerID })
	return out, nil
}

// ─── Offers ──────────────────────────────────────────────────────────────────

func (s *Store) CreateOffer(_ context.Context, o *offer.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[o.ID]; ok {
		return common.NewError(common.CodeConflict, "offer already exists", nil)
	}
	s.offers[o.ID] = cloneOffer(*o)
	return nil
}

func (s *Store) GetOffer(_ context.Context, id string) (*offer.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, common.NotFound("offer", id)
	}
	out := cloneOffer(o)
	return &out, nil
}

func (s *Store) UpdateOffer(_ context.Context, o *offer.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[o.ID]; !ok {
		return common.NotFound("offer", o.ID)
	}
	s.offers[o.ID] = cloneOffer(*o)
	return nil
}

// OfferCount reports how many offers are stored.
func (s *Store) OfferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offers)
}

func (s *Store) ListExpiredUnanswered(_ context.Context, now time.Time) ([]offer.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []offer.Offer
	for _, o := range s.offers {
		if o.AwaitingResponse() && o.Deadline.Before(now) && o.ExpiryNotifiedAt == nil {
			out = append(out, cloneOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out, nil
}

// ─── Onboarding ──────────────────────────────────────────────────────────────

func (s *Store) CreateContract(_ context.Context, c *onboarding.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Benefits = slices.Clone(c.Benefits)
	s.contracts[c.ID] = cp
	return nil
}

// GetContract returns a stored contract snapshot.
func (s *Store) GetContract(id string) (onboarding.Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	return c, ok
}

func (s *Store) CreateOnboarding(_ context.Context, o *onboarding.Onboarding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.onboardings[o.ID]; ok {
		return common.NewError(common.CodeConflict, "onboarding already exists", nil)
	}
	s.onboardings[o.ID] = cloneOnboarding(*o)
	return nil
}

func (s *Store) GetOnboarding(_ context.Context, id string) (*onboarding.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.onboardings[id]
	if !ok {
		return nil, common.NotFound("onboarding", id)
	}
	out := cloneOnboarding(o)
	return &out, nil
}

func (s *Store) FindOnboardingByOffer(_ context.Context, offerID string) (*onboarding.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.onboardings {
		if o.OfferID == offerID {
			out := cloneOnboarding(o)
			return &out, nil
		}
	}
	return nil, common.NotFound("onboarding for offer", offerID)
}

func (s *Store) UpdateOnboarding(_ context.Context, o *onboarding.Onboarding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.onboardings[o.ID]; !ok {
		return common.NotFound("onboarding", o.ID)
	}
	s.onboardings[o.ID] = cloneOnboarding(*o)
	return nil
}

func (s *Store) ListOpenOnboardings(_ context.Context) ([]onboarding.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []onboarding.Onboarding
	for _, o := range s.onboardings {
		if !o.Completed {
			out = append(out, cloneOnboarding(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ─── Copies ──────────────────────────────────────────────────────────────────

func cloneApplication(a application.Application) application.Application {
	a.Workflow.CompletedStages = slices.Clone(a.Workflow.CompletedStages)
	return a
}

func cloneInterview(iv interview.Interview) interview.Interview {
	iv.Panel = slices.Clone(iv.Panel)
	return iv
}

func cloneOffer(o offer.Offer) offer.Offer {
	o.Benefits = slices.Clone(o.Benefits)
	o.Approvers = slices.Clone(o.Approvers)
	return o
}

func cloneOnboarding(o onboarding.Onboarding) onboarding.Onboarding {
	o.Tasks = slices.Clone(o.Tasks)
	return o
}

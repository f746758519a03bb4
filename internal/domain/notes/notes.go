// Package notes handles SOAP documentation: generating draft notes from a
// patient's clinical data and saving/listing finished notes.
package notes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinical-canvas/canvas/internal/platform/apiclient"
)

// Note is one SOAP note. The four sections follow the standard
// Subjective/Objective/Assessment/Plan structure.
type Note struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	Subjective string    `json:"subjective"`
	Objective  string    `json:"objective"`
	Assessment string    `json:"assessment"`
	Plan       string    `json:"plan"`
	CreatedAt  time.Time `json:"created_at"`
}

// Service talks to the backend's SOAP endpoints.
type Service struct {
	client *apiclient.Client
	logger zerolog.Logger
}

// NewService wires a notes service onto a request client.
func NewService(client *apiclient.Client, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger.With().Str("component", "notes").Logger(),
	}
}

// Generate asks the backend to draft a SOAP note from the patient's current
// clinical data. The draft is not persisted until Save is called.
func (s *Service) Generate(ctx context.Context, patientID string) (Note, error) {
	res := apiclient.Do[Note](ctx, s.client, "/api/patients/"+patientID+"/soap/generate", apiclient.Options{
		Method: http.MethodPost,
	})
	if !res.Success {
		return Note{}, fmt.Errorf("generate note for %s: %s", patientID, res.Error.Message)
	}
	note := *res.Data
	note.PatientID = patientID
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	return note, nil
}

// Save persists a note and invalidates the cached note list for the
// patient so the next List reflects it.
func (s *Service) Save(ctx context.Context, patientID string, note Note) (Note, error) {
	note.PatientID = patientID
	res := apiclient.Do[Note](ctx, s.client, "/api/patients/"+patientID+"/soap/save", apiclient.Options{
		Method: http.MethodPost,
		Body:   note,
	})
	if !res.Success {
		return Note{}, fmt.Errorf("save note for %s: %s", patientID, res.Error.Message)
	}
	s.client.InvalidateCache(patientID)
	return *res.Data, nil
}

// List returns the patient's saved notes. A 404 means the patient simply
// has no notes yet and is reported as an empty list, not an error.
func (s *Service) List(ctx context.Context, patientID string) ([]Note, error) {
	res := apiclient.Do[[]Note](ctx, s.client, "/api/patients/"+patientID+"/soap", apiclient.Options{
		Cache: apiclient.CacheNotes,
	})
	if res.Success {
		return *res.Data, nil
	}
	if res.Error.Status == http.StatusNotFound {
		return []Note{}, nil
	}
	return nil, fmt.Errorf("list notes for %s: %s", patientID, res.Error.Message)
}

// Package mockapi runs a local fixture backend for development and demos.
// It serves the built-in patient set over the same endpoints the real
// backend exposes, so the canvas can run without any infrastructure.
package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinical-canvas/canvas/internal/domain/notes"
	"github.com/clinical-canvas/canvas/internal/domain/record"
	"github.com/clinical-canvas/canvas/internal/platform/auth"
)

// Server is the fixture backend. Saved notes live in memory for the
// lifetime of the process.
type Server struct {
	echo   *echo.Echo
	logger zerolog.Logger

	mu         sync.Mutex
	savedNotes map[string][]notes.Note
}

// New builds the server. A non-empty secret enables bearer-token checks on
// the API routes; the health endpoint always stays open.
func New(secret []byte, logger zerolog.Logger) *Server {
	s := &Server{
		echo:       echo.New(),
		logger:     logger.With().Str("component", "mockapi").Logger(),
		savedNotes: make(map[string][]notes.Note),
	}
	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())

	s.echo.GET("/health", s.health)

	api := s.echo.Group("/api", auth.Middleware(secret))
	api.GET("/patients", s.listPatients)
	api.GET("/patients/:id", s.getPatient)
	api.POST("/patients/:id/ask", s.ask)
	api.POST("/patients/:id/soap/generate", s.generateNote)
	api.POST("/patients/:id/soap/save", s.saveNote)
	api.GET("/patients/:id/soap", s.listNotes)

	return s
}

// Handler exposes the underlying handler for httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("fixture backend listening")
	return s.echo.Start(addr)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) listPatients(c echo.Context) error {
	return c.JSON(http.StatusOK, record.FixtureRoster())
}

func (s *Server) getPatient(c echo.Context) error {
	detail, ok := record.FixtureDetail(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	switch strings.ToLower(c.QueryParam("role")) {
	case "analyst":
		detail.CanvasLayout = record.AnalystLayout
	case "admin":
		detail.CanvasLayout = record.AdminLayout
	}
	return c.JSON(http.StatusOK, detail)
}

type askRequest struct {
	Question string `json:"question"`
}

// ask answers from the patient's canned Q&A set when the question overlaps
// one of the stored questions, and otherwise returns a low-confidence
// fallback answer.
func (s *Server) ask(c echo.Context) error {
	detail, ok := record.FixtureDetail(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	var req askRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	if best := bestMatch(req.Question, detail.QAPairs); best != nil {
		return c.JSON(http.StatusOK, record.AskResponse{
			Answer:          best.Answer,
			ConfidenceScore: best.Confidence,
			SourceDocument:  best.SourceDocument,
			SourcePage:      best.SourcePage,
		})
	}
	return c.JSON(http.StatusOK, record.AskResponse{
		Answer:          "I could not find a confident answer to that question in " + detail.Name + "'s available records.",
		ConfidenceScore: 0.1,
	})
}

// bestMatch scores canned questions by shared significant words and returns
// the best scorer, or nil when nothing overlaps.
func bestMatch(question string, pairs []record.WireQAPair) *record.WireQAPair {
	asked := significantWords(question)
	if len(asked) == 0 {
		return nil
	}
	var best *record.WireQAPair
	bestScore := 0
	for i := range pairs {
		score := 0
		for w := range significantWords(pairs[i].Question) {
			if _, ok := asked[w]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = &pairs[i]
		}
	}
	return best
}

var stopWords = map[string]struct{}{
	"what": {}, "is": {}, "the": {}, "are": {}, "this": {}, "with": {},
	"a": {}, "an": {}, "of": {}, "for": {}, "to": {}, "his": {}, "her": {},
	"how": {}, "do": {}, "does": {}, "in": {},
}

func significantWords(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.Trim(w, "?.,!;:")
		if len(w) < 3 {
			continue
		}
		if _, skip := stopWords[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// generateNote drafts a SOAP note from the fixture's summary and flagged
// values. Simple template output, enough to exercise the note flow.
func (s *Server) generateNote(c echo.Context) error {
	detail, ok := record.FixtureDetail(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}

	objective := make([]string, 0, len(detail.VitalsData)+len(detail.LabResults))
	for _, v := range detail.VitalsData {
		objective = append(objective, v.Name+" "+v.Value+" "+v.Unit)
	}
	for _, l := range detail.LabResults {
		if record.DeriveFlag(l.Value, l.ReferenceRange) != record.FlagNormal {
			objective = append(objective, l.Name+" "+l.Value+" "+l.Unit+" (ref "+l.ReferenceRange+")")
		}
	}

	note := notes.Note{
		ID:         uuid.NewString(),
		PatientID:  detail.ID,
		Subjective: "Patient seen for follow-up. " + detail.AISummary,
		Objective:  strings.Join(objective, "; "),
		Assessment: detail.AISummary,
		Plan:       "Continue current management. Review abnormal results and arrange indicated follow-up.",
		CreatedAt:  time.Now().UTC(),
	}
	return c.JSON(http.StatusOK, note)
}

func (s *Server) saveNote(c echo.Context) error {
	patientID := c.Param("id")
	if _, ok := record.FixtureDetail(patientID); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	var note notes.Note
	if err := c.Bind(&note); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed note")
	}
	note.PatientID = patientID
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.savedNotes[patientID] = append(s.savedNotes[patientID], note)
	s.mu.Unlock()

	s.logger.Info().Str("patient_id", patientID).Str("note_id", note.ID).Msg("note saved")
	return c.JSON(http.StatusOK, note)
}

// listNotes returns 404 when the patient has never saved a note, which
// clients render as an empty list.
func (s *Server) listNotes(c echo.Context) error {
	patientID := c.Param("id")
	s.mu.Lock()
	saved, ok := s.savedNotes[patientID]
	out := append([]notes.Note(nil), saved...)
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no notes for patient")
	}
	return c.JSON(http.StatusOK, out)
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/corr"
	"github.com/DanLyss/AstroNavigation/internal/export"
	"github.com/DanLyss/AstroNavigation/internal/nav"
	"github.com/DanLyss/AstroNavigation/internal/state"
)

// SolveRequest is the JSON form of a solve request. Angles are in degrees
// and Time is RFC 3339. PosAngle is required.
type SolveRequest struct {
	Rows      []corr.Row `json:"rows"`
	PosAngle  *float64   `json:"pos_angle"`
	RotAngle  float64    `json:"rot_angle"`
	Time      string     `json:"time"`
	Threshold *float64   `json:"threshold,omitempty"`
	MaxStars  *int       `json:"max_stars,omitempty"`
	Source    string     `json:"source,omitempty"`
}

// SolveResponse wraps a successful solve.
type SolveResponse struct {
	ID       int                    `json:"id"`
	Stars    int                    `json:"stars_used"`
	Rows     int                    `json:"rows"`
	Solution *export.SolutionExport `json:"solution"`
}

// EntrySummary is one history line.
type EntrySummary struct {
	ID         int       `json:"id"`
	SolvedAt   time.Time `json:"solved_at"`
	Source     string    `json:"source,omitempty"`
	DurationMS float64   `json:"duration_ms"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	snap := s.state.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"solves":   snap.Solves,
		"failures": snap.Failures,
	})
}

func (s *Server) solve(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadSize)

	var (
		req SolveRequest
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = readMultipart(c)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no correspondence rows"})
		return
	}
	if req.PosAngle == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'pos_angle'"})
		return
	}
	when, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid 'time': %v", err)})
		return
	}

	opts := s.opts.Filter
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	if req.MaxStars != nil {
		opts.MaxStars = *req.MaxStars
	}

	start := time.Now()
	filtered, err := corr.Filter(req.Rows, opts)
	if err != nil {
		s.fail(c, req.Source, start, err)
		return
	}

	obs := nav.Observation{
		PositionalAngle: unit.AngleFromDeg(*req.PosAngle),
		RotationAngle:   unit.AngleFromDeg(req.RotAngle),
		Time:            when,
	}
	sol, err := s.solver.Solve(filtered.Stars, obs)
	if err != nil {
		s.fail(c, req.Source, start, err)
		return
	}

	e := s.state.Record(req.Source, sol, time.Since(start), nil)
	s.log.Debug("solve %d: lat %.4f lon %.4f from %d stars", e.ID, sol.Latitude.Deg(), sol.Longitude.Deg(), len(filtered.Stars))
	c.JSON(http.StatusOK, SolveResponse{
		ID:       e.ID,
		Stars:    len(filtered.Stars),
		Rows:     filtered.Total,
		Solution: export.FromSolution(sol, e.SolvedAt),
	})
}

// fail records a failed solve and reports it as unprocessable.
func (s *Server) fail(c *gin.Context, source string, start time.Time, err error) {
	e := s.state.Record(source, nil, time.Since(start), err)
	s.log.Warn("solve %d failed: %v", e.ID, err)

	kind := "solve"
	var ge *nav.GeometryError
	switch {
	case errors.Is(err, corr.ErrNoUsableStars):
		kind = "input"
	case errors.As(err, &ge):
		kind = "geometry"
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"id":      e.ID,
		"error":   kind,
		"details": err.Error(),
	})
}

// readMultipart reads a correspondence file upload ("corr") and the
// observation fields from a multipart form.
func readMultipart(c *gin.Context) (SolveRequest, error) {
	var req SolveRequest

	file, err := c.FormFile("corr")
	if err != nil {
		return req, errors.New("missing 'corr' file")
	}
	src, err := file.Open()
	if err != nil {
		return req, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		req.Rows, err = corr.ReadCSV(src)
	} else {
		req.Rows, err = corr.ReadFITS(src)
	}
	if err != nil {
		return req, fmt.Errorf("read %s: %w", file.Filename, err)
	}
	req.Source = file.Filename

	pos, err := formFloat(c, "pos_angle", true)
	if err != nil {
		return req, err
	}
	req.PosAngle = &pos
	if req.RotAngle, err = formFloat(c, "rot_angle", false); err != nil {
		return req, err
	}
	req.Time = c.PostForm("time")

	if v := c.PostForm("threshold"); v != "" {
		th, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid 'threshold': %w", err)
		}
		req.Threshold = &th
	}
	if v := c.PostForm("max_stars"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("invalid 'max_stars': %w", err)
		}
		req.MaxStars = &n
	}
	return req, nil
}

func formFloat(c *gin.Context, key string, required bool) (float64, error) {
	v := c.PostForm(key)
	if v == "" {
		if required {
			return 0, fmt.Errorf("missing '%s'", key)
		}
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s': must be a number", key)
	}
	return f, nil
}

func (s *Server) listSolutions(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'limit'"})
			return
		}
		limit = n
	}

	entries := s.state.History(limit)
	out := make([]EntrySummary, 0, len(entries))
	// Newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, summarize(entries[i]))
	}
	c.JSON(http.StatusOK, gin.H{"solutions": out})
}

func (s *Server) getSolution(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	e, ok := s.state.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such solution"})
		return
	}
	if !e.OK() {
		c.JSON(http.StatusOK, summarize(e))
		return
	}
	c.JSON(http.StatusOK, export.FromSolution(e.Solution, e.SolvedAt))
}

func summarize(e state.Entry) EntrySummary {
	out := EntrySummary{
		ID:         e.ID,
		SolvedAt:   e.SolvedAt,
		Source:     e.Source,
		DurationMS: float64(e.Duration) / float64(time.Millisecond),
		OK:         e.OK(),
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	if e.OK() {
		lat, lon := e.Solution.Latitude.Deg(), e.Solution.Longitude.Deg()
		out.Latitude, out.Longitude = &lat, &lon
	}
	return out
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/DachengChen/paiAnalyst/analyst"
	"github.com/DachengChen/paiAnalyst/chart"
	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/session"
	"github.com/DachengChen/paiAnalyst/table"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type textRequest struct {
	Text string `json:"text"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type preferencesRequest struct {
	AutoExpandSQL *bool `json:"auto_expand_sql"`
	ShowDebug     *bool `json:"show_debug"`
}

type chartRequest struct {
	Turn     int    `json:"turn"`
	Fragment int    `json:"fragment"`
	Family   string `json:"family"`
	X        string `json:"x"`
	Y        string `json:"y"`
	Color    string `json:"color"`
	Sort     string `json:"sort"`
}

func (s *Server) session(c *echo.Context) (*chat.Controller, error) {
	ctl, ok := s.sessions.get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return ctl, nil
}

func (s *Server) health(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.len()})
}

func (s *Server) samples(c *echo.Context) error {
	mode := session.ModeStructured
	if q := c.QueryParam("mode"); q != "" {
		m, ok := session.ParseMode(q)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "mode must be structured or unstructured")
		}
		mode = m
	}
	return c.JSON(http.StatusOK, map[string]any{"mode": mode, "questions": chat.Samples(mode)})
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) createSession(c *echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]string{"id": s.sessions.create()})
}

func (s *Server) deleteSession(c *echo.Context) error {
	if !s.sessions.remove(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getState(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"state": ctl.Store().State(), "controller": ctl.State().String()})
}

func (s *Server) setMode(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	var req modeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	mode, ok := session.ParseMode(req.Mode)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "mode must be structured or unstructured")
	}
	ctl.SetMode(mode)
	return c.JSON(http.StatusOK, ctl.Store().State())
}

func (s *Server) setPreferences(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	var req preferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.AutoExpandSQL != nil {
		ctl.Store().SetFlag(session.FlagAutoExpandSQL, *req.AutoExpandSQL)
	}
	if req.ShowDebug != nil {
		ctl.Store().SetFlag(session.FlagShowDebug, *req.ShowDebug)
	}
	return c.JSON(http.StatusOK, ctl.Store().State())
}

// ─────────────────────────────────────────────────────────────────────────────
// Conversation
// ─────────────────────────────────────────────────────────────────────────────

func (s *Server) listTurns(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"turns": ctl.Store().All()})
}

func (s *Server) clearTurns(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	ctl.Clear()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) postMessage(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	var req textRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text required")
	}
	out, err := ctl.Submit(c.Request().Context(), req.Text)
	return respondOutcome(c, out, err)
}

func (s *Server) postSuggestion(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	var req textRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text required")
	}
	if err := ctl.ClickSuggestion(req.Text); err != nil {
		if errors.Is(err, session.ErrPendingOccupied) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, _, err := ctl.Drain(c.Request().Context())
	return respondOutcome(c, out, err)
}

func respondOutcome(c *echo.Context, out chat.Outcome, err error) error {
	if err != nil {
		var malformed *analyst.MalformedResponseError
		switch {
		case errors.As(err, &malformed):
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error(), "request_id": malformed.RequestID})
		case errors.Is(err, chat.ErrEmptyUtterance):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, newOutcomeResponse(out))
}

// ─────────────────────────────────────────────────────────────────────────────
// Results
// ─────────────────────────────────────────────────────────────────────────────

// result re-executes the SQL fragment addressed by the request.
func (s *Server) result(c *echo.Context, ctl *chat.Controller, turn, fragment int) (*table.Table, error) {
	r, err := ctl.Execute(c.Request().Context(), turn, fragment)
	if err != nil {
		if errors.Is(err, chat.ErrNoSuchTurn) || errors.Is(err, chat.ErrNotSQL) {
			return nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if r.Err != nil {
		return nil, echo.NewHTTPError(http.StatusBadGateway, "execute statement: "+r.Err.Error())
	}
	return r.Table, nil
}

func intParam(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

func (s *Server) renderChart(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	var req chartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	family, ok := chart.ParseFamily(req.Family)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown chart family "+req.Family)
	}
	t, err := s.result(c, ctl, req.Turn, req.Fragment)
	if err != nil {
		return err
	}

	art, err := chart.Render(t, chart.Spec{
		Family: family,
		X:      req.X,
		Y:      req.Y,
		Color:  req.Color,
		Sort:   chart.SortRule(req.Sort),
	})
	if err != nil {
		var dv *chart.DataValidationError
		if errors.As(err, &dv) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": dv.Reason, "guidance": dv.Guidance})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, art)
}

func (s *Server) exportResult(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	turn, err := intParam("turn", c.Param("turn"))
	if err != nil {
		return err
	}
	fragment, err := intParam("fragment", c.QueryParam("fragment"))
	if err != nil {
		return err
	}
	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return echo.NewHTTPError(http.StatusBadRequest, "format must be csv or xlsx")
	}

	t, err := s.result(c, ctl, turn, fragment)
	if err != nil {
		return err
	}

	var (
		body        []byte
		contentType string
	)
	if format == "xlsx" {
		body, err = t.XLSX()
		contentType = xlsxContentType
	} else {
		body, err = t.CSV()
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return attachment(c, table.ExportName(s.now(), format), contentType, body)
}

func (s *Server) summarize(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	turn, err := intParam("turn", c.Param("turn"))
	if err != nil {
		return err
	}
	fragment, err := intParam("fragment", c.QueryParam("fragment"))
	if err != nil {
		return err
	}
	t, err := s.result(c, ctl, turn, fragment)
	if err != nil {
		return err
	}

	question := ""
	if prev, ok := ctl.Store().Turn(turn - 1); ok && prev.Role == session.RoleUser {
		question = session.TextOf(prev.Content, " ")
	}
	summary := s.summarizer.Summarize(c.Request().Context(), question, t)
	return c.JSON(http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) exportChat(c *echo.Context) error {
	ctl, err := s.session(c)
	if err != nil {
		return err
	}
	now := s.now()
	body, err := session.MarshalExport(ctl.Store().All(), now)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return attachment(c, session.ExportFilename(now), "application/json", body)
}

func attachment(c *echo.Context, name, contentType string, body []byte) error {
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, body)
}

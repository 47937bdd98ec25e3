package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rollcallhq/rollcall/core"
	"github.com/rollcallhq/rollcall/core/attendance"
)

type attendanceApi struct {
	deps *ServerDeps
}

func registerAttendanceAPI(g *echo.Group, deps *ServerDeps) {
	api := attendanceApi{deps: deps}

	g.GET("/load", api.load)
	g.POST("/save", api.save)
	g.GET("/stats", api.stats)
	g.GET("/members", api.members)
	g.GET("/chart", api.chart)
	g.GET("/export", api.exportCSV)
}

func (api *attendanceApi) loadDocument(ctx echo.Context) (attendance.Document, error) {
	sessionID := core.CleanString(ctx.QueryParam("sessionId"))
	if sessionID == "" {
		return attendance.Document{}, errSessionRequired
	}

	doc, err := api.deps.AccountSvc.LoadDocument(ctx.Request().Context(), sessionID)
	if err != nil {
		return attendance.Document{}, errors.Wrap(err, "loading document")
	}
	return doc, nil
}

// Handlers

func (api *attendanceApi) load(ctx echo.Context) error {
	doc, err := api.loadDocument(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, DocumentResponse{
		Roster:     doc.Roster,
		Attendance: doc.Attendance,
	})
}

func (api *attendanceApi) save(ctx echo.Context) error {
	var data SaveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	doc := attendance.Document{Roster: data.Roster, Attendance: data.Attendance}
	if err := api.deps.AccountSvc.SaveDocument(ctx.Request().Context(), data.SessionID, doc); err != nil {
		return errors.Wrap(err, "saving document")
	}
	return ctx.JSON(http.StatusOK, OkResponse{Ok: true})
}

func (api *attendanceApi) stats(ctx echo.Context) error {
	doc, err := api.loadDocument(ctx)
	if err != nil {
		return err
	}

	date := core.CleanString(ctx.QueryParam("date"))
	if date == "" {
		date = time.Now().Format(attendance.DateKey)
	} else if _, perr := time.Parse(attendance.DateKey, date); perr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid date %q; expected YYYY-MM-DD", date))
	}

	return ctx.JSON(http.StatusOK, doc.Stats(date))
}

func (api *attendanceApi) members(ctx echo.Context) error {
	doc, err := api.loadDocument(ctx)
	if err != nil {
		return err
	}

	stats := doc.MemberStats()
	if stats == nil {
		stats = []attendance.MemberStat{}
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) chart(ctx echo.Context) error {
	doc, err := api.loadDocument(ctx)
	if err != nil {
		return err
	}

	filter := core.CleanString(ctx.QueryParam("member"))
	if filter == "" {
		filter = attendance.FilterAll
	}

	series := doc.ChartSeries(filter)
	if series == nil {
		series = []attendance.ChartPoint{}
	}
	return ctx.JSON(http.StatusOK, series)
}

func (api *attendanceApi) exportCSV(ctx echo.Context) error {
	doc, err := api.loadDocument(ctx)
	if err != nil {
		return err
	}

	filename := attendance.ExportFilename(time.Now())
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Response().Header().Set(echo.HeaderContentType, "text/csv")
	ctx.Response().WriteHeader(http.StatusOK)
	return doc.WriteCSV(ctx.Response())
}

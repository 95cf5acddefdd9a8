package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/comatt/core/attendance"
)

type attendanceApi struct {
	svc      attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}
	teacher := teacherMiddleware()

	ag := g.Group("/attendances", jwt)
	ag.POST("", api.create, teacher)
	ag.GET("", api.query)
	ag.GET("/current-term", api.queryCurrentTerm)
	ag.GET("/term-rate", api.termRate)
	ag.GET("/current-window-rate", api.currentWindowRate)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.update, teacher)
	ag.DELETE("/:id", api.destroy, teacher)

	pg := g.Group("/periods/:id/attendance", jwt)
	pg.POST("", api.recordForPeriod, teacher)
	pg.GET("", api.queryByPeriod)
	pg.PATCH("", api.correctForPeriod, teacher)

	sg := g.Group("/students/:id", jwt)
	sg.GET("/attendance-report", api.studentReport)
}

// Handlers

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating attendance")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	atts, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying attendances")
	}
	if atts == nil {
		atts = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	a, err := api.svc.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "finding attendance")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data attendance.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Update(id, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(id); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// recordForPeriod captures attendance for a whole period in one shot; the
// period is then flagged as taken and further captures are rejected.
func (api *attendanceApi) recordForPeriod(ctx echo.Context) error {
	periodID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data attendance.PeriodAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PeriodAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RecordForPeriod(periodID, data); err != nil {
		return errors.Wrap(err, "recording period attendance")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *attendanceApi) queryByPeriod(ctx echo.Context) error {
	periodID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	atts, err := api.svc.ByPeriod(periodID)
	if err != nil {
		return errors.Wrap(err, "querying period attendances")
	}
	if atts == nil {
		atts = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *attendanceApi) correctForPeriod(ctx echo.Context) error {
	periodID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data attendance.PeriodAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PeriodAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.CorrectForPeriod(periodID, data); err != nil {
		return errors.Wrap(err, "correcting period attendance")
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *attendanceApi) queryCurrentTerm(ctx echo.Context) error {
	rows, err := api.svc.CurrentTerm()
	if err != nil {
		return errors.Wrap(err, "querying current term attendances")
	}
	if rows == nil {
		rows = []attendance.TermAttendance{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *attendanceApi) termRate(ctx echo.Context) error {
	rate, err := api.svc.TermRate()
	if err != nil {
		return errors.Wrap(err, "computing term rate")
	}
	return ctx.JSON(http.StatusOK, RateResponse{Rate: rate})
}

func (api *attendanceApi) currentWindowRate(ctx echo.Context) error {
	rate, err := api.svc.CurrentWindowRate()
	if err != nil {
		return errors.Wrap(err, "computing current window rate")
	}
	return ctx.JSON(http.StatusOK, RateResponse{Rate: rate})
}

func (api *attendanceApi) studentReport(ctx echo.Context) error {
	studentID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	report, err := api.svc.StudentReport(studentID)
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, report)
}

type RateResponse struct {
	Rate float64 `json:"rate"`
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/comatt/core/period"
	"github.com/trezcool/comatt/core/user"
)

type periodApi struct {
	svc      period.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerPeriodAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc period.Service, userSvc user.Service, validate *validator.Validate) {
	api := periodApi{svc: svc, userSvc: userSvc, validate: validate}
	admin := adminMiddleware()

	pg := g.Group("/periods", jwt)
	pg.POST("", api.create, admin)
	pg.GET("", api.query)
	pg.POST("/copy-schedule", api.copySchedule, admin)
	pg.GET("/:id", api.retrieve)
	pg.PATCH("/:id", api.update, admin)
	pg.DELETE("/:id", api.destroy, admin)
	pg.GET("/:id/students", api.students, teacherMiddleware())

	tg := g.Group("/teachers", jwt)
	tg.GET("/:username/upcoming-schedule", api.upcomingSchedule, teacherMiddleware())
}

// Handlers

func (api *periodApi) create(ctx echo.Context) error {
	var data period.NewPeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPeriod")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating period")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *periodApi) query(ctx echo.Context) error {
	filter := new(period.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []period.Period{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	periods, err := api.svc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying periods")
	}
	if periods == nil {
		periods = []period.Period{}
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *periodApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	p, err := api.svc.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "finding period")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *periodApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data period.UpdatePeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePeriod")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Update(id, data)
	if err != nil {
		return errors.Wrap(err, "updating period")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *periodApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(id); err != nil {
		return errors.Wrap(err, "deleting period")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *periodApi) copySchedule(ctx echo.Context) error {
	var data period.CopySchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CopySchedule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	periods, err := api.svc.CopySchedule(data)
	if err != nil {
		return errors.Wrap(err, "copying schedule")
	}
	return ctx.JSON(http.StatusCreated, periods)
}

func (api *periodApi) students(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	roster, err := api.svc.Students(id)
	if err != nil {
		return errors.Wrap(err, "querying period students")
	}
	if roster == nil {
		roster = []period.RosterEntry{}
	}
	return ctx.JSON(http.StatusOK, roster)
}

// upcomingSchedule returns the nearest upcoming teaching day for a teacher;
// teachers can only look up their own schedule.
func (api *periodApi) upcomingSchedule(ctx echo.Context) error {
	username := ctx.Param("username")

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && ctxUsr.Username != username {
		return errHttpForbidden
	}

	entries, err := api.svc.TeacherUpcomingSchedule(username)
	if err != nil {
		return errors.Wrap(err, "querying upcoming schedule")
	}
	if entries == nil {
		entries = []period.ScheduleEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

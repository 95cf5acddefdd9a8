package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/comatt/core/school"
)

type schoolApi struct {
	svc      school.Service
	validate *validator.Validate
}

// registerSchoolAPI wires the school directory endpoints: terms, subjects,
// groups and students. Reads need authentication; writes need an admin.
func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}
	admin := adminMiddleware()

	tg := g.Group("/terms", jwt)
	tg.POST("", api.createTerm, admin)
	tg.GET("", api.queryTerms)
	tg.GET("/:id", api.retrieveTerm)
	tg.PATCH("/:id", api.updateTerm, admin)
	tg.DELETE("/:id", api.destroyTerm, admin)

	sg := g.Group("/subjects", jwt)
	sg.POST("", api.createSubject, admin)
	sg.GET("", api.querySubjects)
	sg.GET("/:id", api.retrieveSubject)
	sg.PATCH("/:id", api.updateSubject, admin)
	sg.DELETE("/:id", api.destroySubject, admin)

	gg := g.Group("/groups", jwt)
	gg.POST("", api.createGroup, admin)
	gg.GET("", api.queryGroups)
	gg.GET("/:id", api.retrieveGroup)
	gg.GET("/:id/students", api.queryGroupStudents)
	gg.PATCH("/:id", api.updateGroup, admin)
	gg.DELETE("/:id", api.destroyGroup, admin)

	stg := g.Group("/students", jwt)
	stg.POST("", api.createStudent, admin)
	stg.GET("", api.queryStudents)
	stg.GET("/:id", api.retrieveStudent)
	stg.PATCH("/:id", api.updateStudent, admin)
	stg.DELETE("/:id", api.destroyStudent, admin)
}

// Terms

func (api *schoolApi) createTerm(ctx echo.Context) error {
	var data school.NewTerm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTerm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	t, err := api.svc.CreateTerm(data)
	if err != nil {
		return errors.Wrap(err, "creating term")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *schoolApi) queryTerms(ctx echo.Context) error {
	terms, err := api.svc.QueryAllTerms()
	if err != nil {
		return errors.Wrap(err, "querying terms")
	}
	if terms == nil {
		terms = []school.Term{}
	}
	return ctx.JSON(http.StatusOK, terms)
}

func (api *schoolApi) retrieveTerm(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	t, err := api.svc.GetTermByID(id)
	if err != nil {
		return errors.Wrap(err, "finding term")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *schoolApi) updateTerm(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data school.UpdateTerm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTerm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	t, err := api.svc.UpdateTerm(id, data)
	if err != nil {
		return errors.Wrap(err, "updating term")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *schoolApi) destroyTerm(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTerm(id); err != nil {
		return errors.Wrap(err, "deleting term")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *schoolApi) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.CreateSubject(data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *schoolApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QueryAllSubjects()
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []school.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *schoolApi) retrieveSubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetSubjectByID(id)
	if err != nil {
		return errors.Wrap(err, "finding subject")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) updateSubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data school.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.UpdateSubject(id, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) destroySubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSubject(id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Groups

func (api *schoolApi) createGroup(ctx echo.Context) error {
	var data school.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	g, err := api.svc.CreateGroup(data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *schoolApi) queryGroups(ctx echo.Context) error {
	groups, err := api.svc.QueryAllGroups()
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []school.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *schoolApi) retrieveGroup(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	g, err := api.svc.GetGroupByID(id)
	if err != nil {
		return errors.Wrap(err, "finding group")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *schoolApi) queryGroupStudents(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.svc.GetGroupByID(id); err != nil {
		return errors.Wrap(err, "finding group")
	}
	students, err := api.svc.GetStudentsByGroupID(id)
	if err != nil {
		return errors.Wrap(err, "querying group students")
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) updateGroup(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data school.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	g, err := api.svc.UpdateGroup(id, data)
	if err != nil {
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *schoolApi) destroyGroup(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteGroup(id); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Students

func (api *schoolApi) createStudent(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.CreateStudent(data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *schoolApi) queryStudents(ctx echo.Context) error {
	students, err := api.svc.QueryAllStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) retrieveStudent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetStudentByID(id)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) updateStudent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var data school.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.UpdateStudent(id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) destroyStudent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteStudent(id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

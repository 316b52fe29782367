package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"todo-api/domain"
	"todo-api/tasks"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, repo Repository, auth Authenticator, logger *log.Logger) {
	e.GET("/api/tasks", listTasks(repo, auth, logger))
	e.POST("/api/tasks", addTask(repo, auth))
	e.DELETE("/api/tasks/completed", clearCompleted(repo, auth))
	e.GET("/api/tasks/:id", getTask(repo, auth))
	e.PATCH("/api/tasks/:id", editTask(repo, auth))
	e.POST("/api/tasks/:id/toggle", toggleTask(repo, auth))
	e.DELETE("/api/tasks/:id", deleteTask(repo, auth))
	e.GET("/api/summary", getSummary(repo, auth))
	e.GET("/api/categories", getCategories(repo, auth))
	e.GET("/api/export", exportTasks(repo, auth))
	e.POST("/api/import", importTasks(repo, auth))
	e.GET("/healthz", healthz(repo))
}

func healthz(_ Repository) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// respondError maps domain errors onto HTTP statuses: validation
// failures are 400, missing ids 404, anything else 500.
func respondError(c echo.Context, err error) error {
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return c.String(http.StatusBadRequest, ve.Error())
	}
	var notFound domain.TaskNotFoundError
	if errors.As(err, &notFound) {
		return c.String(http.StatusNotFound, notFound.Error())
	}
	c.Logger().Error(err)
	return c.String(http.StatusInternalServerError, "internal error")
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid task id")
	}
	return id, nil
}

// listFilter builds the filter from query params. Both category and
// priority may repeat; completed accepts true/false.
func listFilter(c echo.Context) (domain.Filter, error) {
	var f domain.Filter
	params := c.QueryParams()
	f.Categories = params["category"]
	for _, raw := range params["priority"] {
		p, err := domain.ParsePriority(raw)
		if err != nil {
			return domain.Filter{}, err
		}
		f.Priorities = append(f.Priorities, p)
	}
	if raw := c.QueryParam("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Filter{}, errors.New("invalid completed value")
		}
		f.Completed = &completed
	}
	return f, nil
}

func listTasks(repo Repository, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		if _, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		filter, filterErr := listFilter(c)
		if filterErr != nil {
			metrics.SetErrorStage("invalid_filter")
			err = c.String(http.StatusBadRequest, filterErr.Error())
			return err
		}
		metrics.SetFiltered(!filter.IsZero())

		fetchStart := time.Now()
		all, listErr := repo.List(ctx)
		metrics.ObserveFetch(time.Since(fetchStart))
		if listErr != nil {
			metrics.SetErrorStage("storage")
			err = respondError(c, listErr)
			return err
		}

		matched := filter.Apply(all)
		if matched == nil {
			matched = []domain.Task{}
		}
		metrics.SetTasksReturned(len(matched))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasksResponse{Tasks: matched})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getTask(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := taskID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		task, err := repo.Get(c.Request().Context(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func addTask(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		lr := io.LimitReader(c.Request().Body, taskBodyMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req addTaskRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		priority, err := domain.ParsePriority(req.Priority)
		if err != nil {
			return respondError(c, err)
		}
		task, err := repo.Add(c.Request().Context(), req.Title, priority, req.Category)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func editTask(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := taskID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}

		lr := io.LimitReader(c.Request().Body, taskBodyMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req editTaskRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		upd := tasks.Update{Title: req.Title, Category: req.Category}
		if req.Priority != nil {
			priority, err := domain.ParsePriority(*req.Priority)
			if err != nil {
				return respondError(c, err)
			}
			upd.Priority = &priority
		}
		task, err := repo.Edit(c.Request().Context(), id, upd)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func toggleTask(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := taskID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		task, err := repo.ToggleComplete(c.Request().Context(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := taskID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func clearCompleted(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		removed, err := repo.ClearCompleted(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, clearCompletedResponse{Removed: removed})
	}
}

func getSummary(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		all, err := repo.List(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, domain.Summarize(all))
	}
}

func getCategories(repo Repository, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		all, err := repo.List(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, domain.Categories(all))
	}
}

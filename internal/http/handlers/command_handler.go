// Command HTTP handlers.
//
// Endpoints:
//   - GET  /commands             (list registered commands)
//   - POST /commands/{name}      (execute; Idempotency-Key supported)
//   - GET  /version              (execute "version")
//   - GET  /executions           (execution log, paginated, ETag support)
//   - GET  /executions/{id}      (one execution)
//
// Handlers stay thin: they resolve the caller, call the dispatcher and map
// its errors through writeError.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/novaordis/rest-playground/internal/command"
	"github.com/novaordis/rest-playground/internal/domain"
	"github.com/novaordis/rest-playground/internal/http/middleware"
	"github.com/novaordis/rest-playground/internal/services"
	"github.com/novaordis/rest-playground/internal/utils"
)

// CommandService is the dispatcher contract consumed by the handlers.
// *services.CommandService implements it.
type CommandService interface {
	List() []services.CommandInfo
	Execute(ctx context.Context, clientID, name, idemKey string) (*services.Outcome, error)
	ListExecutions(ctx context.Context, cmdName string, page, pageSize int) ([]domain.Execution, int64, error)
	GetExecution(ctx context.Context, id string) (*domain.Execution, error)
	ExecutionsStats(ctx context.Context, cmdName string) (int64, *time.Time, error)
}

// Handlers groups the command endpoints.
type Handlers struct {
	svc CommandService
}

// New returns Handlers bound to svc.
func New(svc CommandService) *Handlers {
	return &Handlers{svc: svc}
}

// HeaderReplayed is set to "true" on responses served from an earlier
// execution.
const HeaderReplayed = "Idempotent-Replayed"

//
// DTOs
//

// ListCommandsResponse lists the registered commands.
type ListCommandsResponse struct {
	Commands []services.CommandInfo `json:"commands"`
}

// ExecuteResponse is returned by a successful execution.
type ExecuteResponse struct {
	ExecutionID string `json:"execution_id,omitempty" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	Command     string `json:"command"                example:"describe-api"`
	Outcome     string `json:"outcome"                example:"succeeded"`
	DurationMS  int64  `json:"duration_ms"            example:"3"`
	Replayed    bool   `json:"replayed"`
	// Result is the command report, if it produced one.
	Result any `json:"result,omitempty" swaggertype:"object"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListExecutionsResponse wraps a page of the execution log.
type ListExecutionsResponse struct {
	Executions []domain.Execution `json:"executions"`
	Pagination Pagination         `json:"pagination"`
}

// clampPagination reads page and page_size and bounds them.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)
	p := utils.NewPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), defaultPageSize),
		defaultPageSize, maxPageSize,
	)
	return p.Number, p.Size
}

//
// Handlers
//

// ListCommands godoc
// @ID          listCommands
// @Summary     List commands
// @Description Returns the names and display titles of all registered commands.
// @Tags        Commands
// @Produce     json
// @Success     200  {object}  handlers.ListCommandsResponse
// @Router      /commands [get]
func (h *Handlers) ListCommands(c *gin.Context) {
	ok(c, http.StatusOK, ListCommandsResponse{Commands: h.svc.List()})
}

// ExecuteCommand godoc
// @ID          executeCommand
// @Summary     Execute a command
// @Description Constructs the named command, runs it synchronously and reports the outcome.
// @Description Failures carry the status the command chose; unimplemented commands answer 501.
// @Tags        Commands
// @Produce     json
//
// @Param       name             path    string  true   "Command name"  example(describe-api)
// @Param       X-Client-ID      header  string  false  "Caller identity (defaults to client IP)"
// @Param       Idempotency-Key  header  string  false  "Replays an earlier successful execution"
//
// @Success     200  {object}  handlers.ExecuteResponse
// @Header      200  {string}  X-Execution-ID       "Execution log ID"
// @Header      200  {string}  Idempotent-Replayed  "true when served from an earlier execution"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid Idempotency-Key"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown command"
// @Failure     422  {object}  handlers.ErrorResponse  "Command rejected its input"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Failure     501  {object}  handlers.ErrorResponse  "Not implemented"
// @Router      /commands/{name} [post]
func (h *Handlers) ExecuteCommand(c *gin.Context) {
	h.execute(c, c.Param("name"))
}

// Version godoc
// @ID          version
// @Summary     Service version
// @Description Executes the "version" command. It has no behavior yet and always answers 501.
// @Tags        Commands
// @Produce     json
// @Param       X-Client-ID  header  string  false  "Caller identity (defaults to client IP)"
// @Success     200  {object}  handlers.ExecuteResponse
// @Failure     501  {object}  handlers.ErrorResponse  "Not implemented"
// @Router      /version [get]
func (h *Handlers) Version(c *gin.Context) {
	h.execute(c, command.VersionName)
}

func (h *Handlers) execute(c *gin.Context, name string) {
	key, _ := middleware.GetIdempotencyKey(c)
	out, err := h.svc.Execute(c.Request.Context(), middleware.ClientIDFrom(c), name, key)
	if out != nil && out.Execution != nil && out.Execution.ID != "" {
		c.Header(middleware.HeaderExecutionID, out.Execution.ID)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	resp := ExecuteResponse{
		Command:  name,
		Outcome:  domain.OutcomeSucceeded,
		Replayed: out.Replayed,
		Result:   out.Result,
	}
	if e := out.Execution; e != nil {
		resp.ExecutionID = e.ID
		resp.Command = e.Command
		resp.Outcome = e.Outcome
		resp.DurationMS = e.DurationMS
	}
	if out.Replayed {
		c.Header(HeaderReplayed, "true")
	} else if middleware.IsReplay(c) {
		// The binding expired between the middleware lookup and dispatch.
		middleware.LoggerFrom(c).Info().
			Str("command", resp.Command).
			Str("execution_id", resp.ExecutionID).
			Msg("idempotency key expired; command executed again")
	}
	ok(c, http.StatusOK, resp)
}

// ListExecutions godoc
// @ID          listExecutions
// @Summary     List executions (paginated)
// @Description Returns the execution log, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Executions
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       command        query   string  false "Only executions of this command"  example(version)
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListExecutionsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /executions [get]
func (h *Handlers) ListExecutions(c *gin.Context) {
	ctx := c.Request.Context()
	cmdName := c.Query("command")
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.svc.ExecutionsStats(ctx, cmdName); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"executions:%s:%d:%d:%d:%d"`, cmdName, count, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.svc.ListExecutions(ctx, cmdName, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListExecutionsResponse{
		Executions: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetExecution godoc
// @ID          getExecution
// @Summary     Get one execution
// @Tags        Executions
// @Produce     json
// @Param       id   path  string  true  "Execution ID (UUID)"  format(uuid)
// @Success     200  {object} domain.Execution
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Execution not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /executions/{id} [get]
func (h *Handlers) GetExecution(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "execution id must be a UUID")
		return
	}
	e, err := h.svc.GetExecution(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrExecutionNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "execution not found")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	default:
		ok(c, http.StatusOK, e)
	}
}

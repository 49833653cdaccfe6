package handlers

import (
	"net/http"

	"task-tracker/backend/internal/engine"
	"task-tracker/backend/internal/query"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// defaultTaskLimit mirrors the documented listing default: unfiltered
// task listings return at most 100 documents.
const defaultTaskLimit = 100

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tasks", h.GetTasks)
	rg.POST("/tasks", h.CreateTask)
	rg.GET("/tasks/:id", h.GetTaskByID)
	rg.PUT("/tasks/:id", h.UpdateTask)
	rg.DELETE("/tasks/:id", h.DeleteTask)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	opts, err := query.Parse(queryParams(c), query.TaskSchema, defaultTaskLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	if opts.Count {
		count, err := h.taskService.CountTasks(c.Request.Context(), opts)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "OK", count)
		return
	}

	tasks, err := h.taskService.GetTasks(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var input engine.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond(c, http.StatusBadRequest, "request body must be valid JSON", nil)
		return
	}

	task, _, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Task created", task)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	task, err := h.taskService.GetTaskByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var input engine.TaskUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		respond(c, http.StatusBadRequest, "request body must be valid JSON", nil)
		return
	}

	task, _, err := h.taskService.UpdateTask(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Task updated", task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if _, err := h.taskService.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

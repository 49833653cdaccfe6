package handlers

import (
	"net/http"

	"task-tracker/backend/internal/engine"
	"task-tracker/backend/internal/query"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.GetUsers)
	rg.POST("/users", h.CreateUser)
	rg.GET("/users/:id", h.GetUserByID)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)
}

// User listings have no default limit; the collection is expected to
// stay small.
func (h *UserHandler) GetUsers(c *gin.Context) {
	opts, err := query.Parse(queryParams(c), query.UserSchema, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	if opts.Count {
		count, err := h.userService.CountUsers(c.Request.Context(), opts)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, "OK", count)
		return
	}

	users, err := h.userService.GetUsers(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", users)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var input engine.UserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond(c, http.StatusBadRequest, "request body must be valid JSON", nil)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created", user)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "OK", user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var input engine.UserUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		respond(c, http.StatusBadRequest, "request body must be valid JSON", nil)
		return
	}

	user, _, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated", user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if _, err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

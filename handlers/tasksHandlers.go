package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"tasks-api/models"
	"tasks-api/utilities"

	"github.com/gorilla/mux"
)

// TaskStore is the persistence the task handlers depend on.
// *models.TaskRepository satisfies it.
type TaskStore interface {
	CreateTask(ctx context.Context, title, description string) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, u models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

var _ TaskStore = (*models.TaskRepository)(nil)

// TaskHandler serves the /tasks endpoints.
type TaskHandler struct {
	store TaskStore
}

func NewTaskHandler(store TaskStore) *TaskHandler {
	return &TaskHandler{store: store}
}

// HealthHandler reports that the service is up. It never touches the store.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: MsgHealthy})
}

// CreateTaskHandler creates a task from {"title", "description"}.
func (h *TaskHandler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	utilities.LogDebug("Starting task creation")

	var input models.NewTask
	if err := decodeJSONBody(r, &input); err != nil {
		utilities.LogError(err, "CreateTaskHandler: failed to decode JSON body")
		respondWithError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	if !input.HasTitle() {
		utilities.LogDebug("CreateTaskHandler: rejected request without title")
		respondWithError(w, http.StatusBadRequest, MsgTitleRequired)
		return
	}

	task, err := h.store.CreateTask(r.Context(), *input.Title, input.DescriptionOrDefault())
	if err != nil {
		utilities.LogError(err, "CreateTaskHandler: failed to insert task")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utilities.LogInfo("Task created: %q (ID: %d)", task.Title, task.ID)
	respondWithJSON(w, http.StatusCreated, task)
}

// ListTasksHandler returns all tasks, newest first.
func (h *TaskHandler) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	utilities.LogDebug("Listing tasks")

	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		utilities.LogError(err, "ListTasksHandler: failed to query tasks")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	utilities.LogDebug("Listed %d tasks", len(tasks))
	respondWithJSON(w, http.StatusOK, tasks)
}

// GetTaskHandler returns a single task.
func (h *TaskHandler) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	utilities.LogDebug("Fetching task %d", id)

	task, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		h.storeFailure(w, err, "GetTaskHandler")
		return
	}

	respondWithJSON(w, http.StatusOK, task)
}

// UpdateTaskHandler applies a partial update. Fields left out of the body,
// or sent as null, keep their stored value.
func (h *TaskHandler) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	utilities.LogDebug("Updating task %d", id)

	var updates models.TaskUpdate
	if err := decodeJSONBody(r, &updates); err != nil {
		utilities.LogError(err, "UpdateTaskHandler: failed to decode JSON body")
		respondWithError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	task, err := h.store.UpdateTask(r.Context(), id, updates)
	if err != nil {
		h.storeFailure(w, err, "UpdateTaskHandler")
		return
	}

	utilities.LogInfo("Task updated: %d", task.ID)
	respondWithJSON(w, http.StatusOK, task)
}

// DeleteTaskHandler removes a task permanently.
func (h *TaskHandler) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	utilities.LogDebug("Deleting task %d", id)

	if err := h.store.DeleteTask(r.Context(), id); err != nil {
		h.storeFailure(w, err, "DeleteTaskHandler")
		return
	}

	utilities.LogInfo("Task deleted: %d", id)
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: MsgTaskDeleted})
}

// storeFailure maps a store error onto 404 or 500.
func (h *TaskHandler) storeFailure(w http.ResponseWriter, err error, handler string) {
	if errors.Is(err, models.ErrTaskNotFound) {
		utilities.LogDebug("%s: %v", handler, err)
		respondWithError(w, http.StatusNotFound, MsgTaskNotFound)
		return
	}
	utilities.LogError(err, handler+": store error")
	respondWithError(w, http.StatusInternalServerError, err.Error())
}

// taskIDFromPath reads the {id} route variable. The route only matches digits,
// so a parse failure means the number cannot name a stored task.
func taskIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utilities.LogDebug("task id %q is not a valid integer: %v", raw, err)
		respondWithError(w, http.StatusNotFound, MsgTaskNotFound)
		return 0, false
	}
	return id, true
}

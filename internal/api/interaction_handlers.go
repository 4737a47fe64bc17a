package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/resinfarm/internal/vec"
	"github.com/annel0/resinfarm/internal/world"
	"github.com/annel0/resinfarm/internal/world/block"
	"github.com/annel0/resinfarm/internal/world/item"
)

// CreatePlayerRequest – создание игрока; Items кладутся в хотбар по порядку
type CreatePlayerRequest struct {
	Name  string   `json:"name" binding:"required"`
	Items []string `json:"items"`
}

// PlayerResponse – игрок и его хотбар
type PlayerResponse = world.PlayerSnapshot

// StartRequest – начало взаимодействия
type StartRequest struct {
	AgentID  string     `json:"agent_id" binding:"required"`
	Position vec.Vec3   `json:"position"`
	Face     block.Face `json:"face"`
}

// StepRequest – тик или остановка с заявленным временем
type StepRequest struct {
	AgentID string  `json:"agent_id" binding:"required"`
	Seconds float64 `json:"seconds"`
}

// CancelRequest – явная отмена
type CancelRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
}

// StartResponse – итог Start
type StartResponse struct {
	Handled   bool   `json:"handled"`
	SessionID string `json:"session_id,omitempty"`
}

func (rs *RestServer) handleCreatePlayer(c *gin.Context) {
	var req CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if len(req.Items) > item.HotbarSize {
		respondError(c, http.StatusBadRequest, "Слишком много предметов")
		return
	}

	p := world.NewPlayer(req.Name)
	for i, code := range req.Items {
		it, ok := rs.items.Get(item.NormalizeCode(code))
		if !ok {
			respondError(c, http.StatusBadRequest, "Неизвестный предмет: "+code)
			return
		}
		p.Inventory.Put(i, item.NewStack(it, 1))
	}
	rs.world.AddPlayer(p)

	snap, _ := rs.world.PlayerSnapshot(p.ID())
	c.JSON(http.StatusCreated, GenericResponse{Success: true, Message: "Игрок создан", Data: snap})
}

func (rs *RestServer) handleGetPlayer(c *gin.Context) {
	snap, ok := rs.world.PlayerSnapshot(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "Игрок не найден")
		return
	}
	respondOK(c, "Игрок получен", snap)
}

func (rs *RestServer) handlePlayerMessages(c *gin.Context) {
	if _, ok := rs.world.Player(c.Param("id")); !ok {
		respondError(c, http.StatusNotFound, "Игрок не найден")
		return
	}
	respondOK(c, "Сообщения получены", rs.world.Messages(c.Param("id")))
}

func (rs *RestServer) handleListInteractions(c *gin.Context) {
	respondOK(c, "Активные взаимодействия", rs.dispatcher.Sessions())
}

func (rs *RestServer) handleStart(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	p, ok := rs.world.Player(req.AgentID)
	if !ok {
		respondError(c, http.StatusNotFound, "Игрок не найден")
		return
	}

	s, handled, err := rs.dispatcher.Start(c.Request.Context(), p, block.Selection{Position: req.Position, Face: req.Face})
	if err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}

	resp := StartResponse{Handled: handled}
	if s != nil {
		resp.SessionID = s.ID
	}
	respondOK(c, "Взаимодействие обработано", resp)
}

func (rs *RestServer) handleStep(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	cont, err := rs.dispatcher.Step(c.Request.Context(), req.AgentID, req.Seconds)
	if err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}
	respondOK(c, "Шаг выполнен", gin.H{"continue": cont})
}

func (rs *RestServer) handleStop(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	res, err := rs.dispatcher.Stop(c.Request.Context(), req.AgentID, req.Seconds)
	if err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}
	respondOK(c, "Взаимодействие завершено", res)
}

func (rs *RestServer) handleCancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	if err := rs.dispatcher.Cancel(c.Request.Context(), req.AgentID); err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}
	respondOK(c, "Взаимодействие отменено", nil)
}

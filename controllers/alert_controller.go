package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nbowman189/vitruvian/middlewares"
	"github.com/nbowman189/vitruvian/services"
)

type AlertController struct {
	Hub *services.RealtimeHub
}

func NewAlertController(hub *services.RealtimeHub) *AlertController {
	return &AlertController{Hub: hub}
}

func (h *AlertController) ListAlerts(c *gin.Context) {
	userID, ok := middlewares.UserIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	alerts, err := services.ListAlerts(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin personal deployment; the session cookie is the gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Websocket receives coach replies and check-in events as they happen.
func (h *AlertController) Websocket(c *gin.Context) {
	userID, ok := middlewares.UserIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return // upgrader already wrote the response
	}

	client := &services.WSClient{UserID: userID, Conn: conn}
	h.Hub.Register(client)

	// Reader loop exists only to notice the close.
	go func() {
		defer h.Hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"leavedesk/internal/apiserver/auth"
	"leavedesk/internal/shared/eventbus"
	"leavedesk/internal/shared/model"
)

// writeWait 单条消息的写超时
const writeWait = 10 * time.Second

// EventGateway 把事件总线上的请求生命周期事件推送给管理端 WebSocket 连接
type EventGateway struct {
	authCfg auth.Config
	bus     eventbus.Bus
	metrics *Metrics

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewEventGateway 创建 WebSocket 事件网关
func NewEventGateway(authCfg auth.Config, bus eventbus.Bus, allowedOrigin string, metrics *Metrics) *EventGateway {
	return &EventGateway{
		authCfg: authCfg,
		bus:     bus,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "" || origin == allowedOrigin
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Run 订阅事件总线并广播，ctx 取消后退出
func (g *EventGateway) Run(ctx context.Context) {
	events, cancel, err := g.bus.Subscribe(ctx)
	if err != nil {
		log.Printf("[ws] subscribe error: %v", err)
		return
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			g.closeAll()
			return
		case event, ok := <-events:
			if !ok {
				g.closeAll()
				return
			}
			g.broadcast(event)
		}
	}
}

// HandleWS 处理 GET /ws/notifications
//
// WebSocket 握手无法携带 Authorization 头，令牌通过 token 查询参数传递，
// 仅限 Manager 角色连接。
func (g *EventGateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Authentication failed - No token provided", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ParseToken(g.authCfg, token)
	if err != nil {
		http.Error(w, "Invalid token - Please login again", http.StatusUnauthorized)
		return
	}
	if role, ok := model.ParseRole(claims.Role); !ok || !role.CanManage() {
		http.Error(w, "Forbidden Request. Insufficient permissions", http.StatusForbidden)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.clients[conn] = struct{}{}
	count := len(g.clients)
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.wsClients.Set(float64(count))
	}
	log.Printf("[ws] client connected (%d active)", count)

	// 读循环只用于感知断连，客户端消息全部丢弃
	go func() {
		defer g.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast 向所有连接推送事件，写失败的连接直接移除
func (g *EventGateway) broadcast(event *eventbus.Event) {
	g.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(g.clients))
	for c := range g.clients {
		conns = append(conns, c)
	}
	g.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(event); err != nil {
			log.Printf("[ws] write error, dropping client: %v", err)
			g.remove(c)
		}
	}
}

func (g *EventGateway) remove(conn *websocket.Conn) {
	g.mu.Lock()
	if _, ok := g.clients[conn]; ok {
		delete(g.clients, conn)
		conn.Close()
	}
	count := len(g.clients)
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.wsClients.Set(float64(count))
	}
}

func (g *EventGateway) closeAll() {
	g.mu.Lock()
	for c := range g.clients {
		c.Close()
	}
	g.clients = make(map[*websocket.Conn]struct{})
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.wsClients.Set(0)
	}
}

package dev

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadPath is where browsers connect for reload notifications.
const ReloadPath = "/_pagekit/reload"

const writeTimeout = 5 * time.Second

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	ReloadTypeFull  ReloadMessageType = "reload"
	ReloadTypeCSS   ReloadMessageType = "css"
	ReloadTypeError ReloadMessageType = "error"
	ReloadTypeClear ReloadMessageType = "clear"
)

// ReloadMessage is sent to browsers via WebSocket.
type ReloadMessage struct {
	Type  ReloadMessageType `json:"type"`
	Error string            `json:"error,omitempty"`
	File  string            `json:"file,omitempty"`
}

// ReloadServer pushes ReloadMessages to connected browsers. The last error
// is remembered until cleared, so a browser opened after a failed rebuild
// still shows the overlay.
type ReloadServer struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex // per-connection write lock
	lastErr *ReloadMessage
}

// NewReloadServer creates a reload server. Any origin may connect.
func NewReloadServer(logger *slog.Logger) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadServer{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the browser goes away.
func (r *ReloadServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Debug("reload upgrade failed", "error", err)
		return
	}

	lock := &sync.Mutex{}
	r.mu.Lock()
	r.clients[conn] = lock
	pending := r.lastErr
	r.mu.Unlock()
	r.logger.Debug("reload client connected", "remote", req.RemoteAddr, "clients", r.ClientCount())

	if pending != nil {
		if data, err := json.Marshal(pending); err == nil {
			r.send(conn, lock, data)
		}
	}

	// Browsers never send; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	r.drop(conn)
}

// NotifyReload tells browsers to reload the page.
func (r *ReloadServer) NotifyReload() {
	r.broadcast(ReloadMessage{Type: ReloadTypeFull})
}

// NotifyCSS tells browsers to refetch the stylesheet file.
func (r *ReloadServer) NotifyCSS(file string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeCSS, File: file})
}

// NotifyError shows errMsg in an overlay, now and for browsers that
// connect before ClearError.
func (r *ReloadServer) NotifyError(errMsg string) {
	msg := ReloadMessage{Type: ReloadTypeError, Error: errMsg}
	r.mu.Lock()
	r.lastErr = &msg
	r.mu.Unlock()
	r.broadcast(msg)
}

// ClearError removes the overlay.
func (r *ReloadServer) ClearError() {
	r.mu.Lock()
	r.lastErr = nil
	r.mu.Unlock()
	r.broadcast(ReloadMessage{Type: ReloadTypeClear})
}

// LastError returns the error shown to browsers, or "".
func (r *ReloadServer) LastError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.lastErr == nil {
		return ""
	}
	return r.lastErr.Error
}

func (r *ReloadServer) broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	r.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(r.clients))
	for conn, lock := range r.clients {
		conns[conn] = lock
	}
	r.mu.RUnlock()

	for conn, lock := range conns {
		r.send(conn, lock, data)
	}
}

// send writes data to conn and drops the connection on failure. gorilla
// allows one concurrent writer per connection, hence lock.
func (r *ReloadServer) send(conn *websocket.Conn, lock *sync.Mutex, data []byte) {
	lock.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := conn.WriteMessage(websocket.TextMessage, data)
	lock.Unlock()
	if err != nil {
		r.logger.Debug("reload client dropped", "error", err)
		r.drop(conn)
	}
}

func (r *ReloadServer) drop(conn *websocket.Conn) {
	r.mu.Lock()
	delete(r.clients, conn)
	r.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected browsers.
func (r *ReloadServer) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close disconnects every browser.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for conn := range r.clients {
		conn.Close()
		delete(r.clients, conn)
	}
}

// InjectScript inserts DevClientScript before the closing body tag, or
// appends it when the document has none.
func InjectScript(html []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(html), []byte("</body>"))
	if idx < 0 {
		return append(append([]byte{}, html...), DevClientScript...)
	}
	out := make([]byte, 0, len(html)+len(DevClientScript))
	out = append(out, html[:idx]...)
	out = append(out, DevClientScript...)
	return append(out, html[idx:]...)
}

// DevClientScript is the JavaScript for hot reload.
// This is injected into the page in development mode.
const DevClientScript = `
<script>
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '/_pagekit/reload');

        ws.onopen = function() {
            console.log('[pagekit] Hot reload connected');
            reconnectDelay = 1000;
            clearErrorOverlay();
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'reload':
                    console.log('[pagekit] Reloading...');
                    location.reload();
                    break;

                case 'css':
                    console.log('[pagekit] Reloading CSS...');
                    reloadCSS();
                    break;

                case 'error':
                    console.error('[pagekit] Build error:', msg.error);
                    showErrorOverlay(msg.error);
                    break;

                case 'clear':
                    clearErrorOverlay();
                    break;
            }
        };

        ws.onclose = function() {
            console.log('[pagekit] Connection lost, reconnecting in', reconnectDelay + 'ms');
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function reloadCSS() {
        var links = document.querySelectorAll('link[rel="stylesheet"]');
        links.forEach(function(link) {
            var href = link.href;
            var url = new URL(href);
            url.searchParams.set('_reload', Date.now());
            link.href = url.toString();
        });
    }

    function showErrorOverlay(error) {
        clearErrorOverlay();

        var overlay = document.createElement('div');
        overlay.id = 'pagekit-error-overlay';
        overlay.style.cssText = 'position:fixed;top:0;left:0;right:0;bottom:0;background:rgba(0,0,0,0.9);color:#fff;font-family:monospace;font-size:14px;padding:20px;overflow:auto;z-index:999999;';

        var content = document.createElement('div');
        content.style.cssText = 'max-width:800px;margin:0 auto;';

        var title = document.createElement('h2');
        title.style.cssText = 'color:#ff5555;margin:0 0 20px;';
        title.textContent = 'Page Error';

        var pre = document.createElement('pre');
        pre.style.cssText = 'white-space:pre-wrap;word-wrap:break-word;background:#1a1a1a;padding:20px;border-radius:8px;border:1px solid #333;';
        pre.textContent = error;

        var hint = document.createElement('p');
        hint.style.cssText = 'margin-top:20px;color:#888;';
        hint.textContent = 'Fix the error and save to reload.';

        content.appendChild(title);
        content.appendChild(pre);
        content.appendChild(hint);
        overlay.appendChild(content);
        document.body.appendChild(overlay);
    }

    function clearErrorOverlay() {
        var overlay = document.getElementById('pagekit-error-overlay');
        if (overlay) {
            overlay.remove();
        }
    }

    // Connect on load
    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`

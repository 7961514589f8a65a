package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tgrbin/relay/internal/service"
	"nhooyr.io/websocket"
)

// ServeHeartbeat returns an HTTP handler that upgrades to WebSocket and
// treats every inbound frame as a user-activity signal. Identity comes from
// a query param because WebSocket clients can't set headers.
func ServeHeartbeat(presenceService *service.PresenceService, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
		if err != nil {
			http.Error(w, "missing or invalid user_id", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // origin checks happen upstream
		})
		if err != nil {
			log.Warn().Err(err).Msg("ws: accept failed")
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := r.Context()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				var closeErr websocket.CloseError
				if !errors.As(err, &closeErr) && ctx.Err() == nil {
					log.Debug().Err(err).Stringer("user_id", userID).Msg("ws: read ended")
				}
				return
			}

			if err := presenceService.Touch(ctx, userID, time.Now()); err != nil {
				log.Warn().Err(err).Stringer("user_id", userID).Msg("ws: presence update failed")
				conn.Close(websocket.StatusInternalError, "presence update failed")
				return
			}
		}
	}
}

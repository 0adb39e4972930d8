package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
)

// Subscribe streams the caller's membership states for kind on promptID. The first
// connection is made before Subscribe returns so that a missing prompt or a rejected
// token is reported to the caller. After that, dropped connections are re-established
// with backoff, resuming after the last revision received. The channel is closed when
// ctx is done or the server rejects a reconnect.
func (c *Client) Subscribe(ctx context.Context, promptID string, kind entity.ReactionKind) (<-chan entity.MembershipState, error) {
	conn, err := c.dial(ctx, promptID, kind, -1)
	if err != nil {
		return nil, err
	}
	out := make(chan entity.MembershipState, 1)
	go c.follow(ctx, conn, promptID, kind, out)
	return out, nil
}

func (c *Client) follow(ctx context.Context, conn *websocket.Conn, promptID string, kind entity.ReactionKind, out chan<- entity.MembershipState) {
	defer close(out)
	var last int64 = -1
	backoff := c.minBackoff
	for {
		received := c.read(ctx, conn, &last, out)
		if ctx.Err() != nil {
			return
		}
		if received {
			backoff = c.minBackoff
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(2*backoff, c.maxBackoff)

			var err error
			conn, err = c.dial(ctx, promptID, kind, last)
			if err == nil {
				break
			}
			if !failure.Is(err, failure.KindTransient) {
				c.logger.Warnf("live subscription for prompt %s ended: %v", promptID, err)
				return
			}
			c.logger.Warnf("live subscription for prompt %s: reconnect failed: %v", promptID, err)
		}
	}
}

// read forwards states until the connection drops. It reports whether anything arrived.
func (c *Client) read(ctx context.Context, conn *websocket.Conn, last *int64, out chan<- entity.MembershipState) bool {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	received := false
	for {
		var frame dto.MembershipStateResponse
		if err := conn.ReadJSON(&frame); err != nil {
			return received
		}
		if frame.Revision <= *last {
			continue
		}
		*last = frame.Revision
		received = true
		select {
		case out <- frame.ToMembershipState():
		case <-ctx.Done():
			return received
		}
	}
}

func (c *Client) dial(ctx context.Context, promptID string, kind entity.ReactionKind, since int64) (*websocket.Conn, error) {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += reactionPath(promptID, kind) + "/live"
	q := url.Values{}
	if since >= 0 {
		q.Set("since", strconv.FormatInt(since, 10))
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	token, err := c.token(ctx)
	if err != nil {
		return nil, failure.Unauthenticated(err.Error())
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil && errors.Is(err, websocket.ErrBadHandshake) {
			defer resp.Body.Close()
			return nil, decodeFailure(resp)
		}
		return nil, failure.Transient("dial live", err)
	}
	return conn, nil
}

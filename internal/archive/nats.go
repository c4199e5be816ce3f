package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
)

// VideoHeader carries the video id on every published message.
const VideoHeader = "Yt-Video-Id"

// Publisher emits one NATS message per comment.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// ConnectNATS dials url; messages go to subject.
func ConnectNATS(url, subject string) (*Publisher, error) {
	if subject == "" {
		subject = "youtube.comments"
	}
	nc, err := nats.Connect(url,
		nats.Name("go_ytcomments"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(10),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect %s: %w", url, err)
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

func (p *Publisher) Write(ctx context.Context, video string, comments []youtube.Comment) error {
	for _, c := range comments {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("nats: marshal %s: %w", c.CID, err)
		}
		msg := nats.NewMsg(p.subject)
		msg.Header.Set(VideoHeader, video)
		msg.Data = data
		if err := p.nc.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats: publish %s: %w", c.CID, err)
		}
	}
	if _, ok := ctx.Deadline(); !ok {
		return p.nc.FlushTimeout(5 * time.Second)
	}
	return p.nc.FlushWithContext(ctx)
}

func (p *Publisher) Close() error {
	return p.nc.Drain()
}

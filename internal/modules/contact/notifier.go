package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang/glog"
)

// Notifier forwards a lead to a form relay so the agent is told by email.
type Notifier interface {
	Notify(ctx context.Context, form RelayForm) error
}

// RelayForm is the payload the relay expects. Field names follow the site's
// form inputs.
type RelayForm struct {
	Name    string `json:"nome"`
	Email   string `json:"email"`
	Phone   string `json:"telefone"`
	Message string `json:"mensagem"`
	Subject string `json:"_subject"`
}

type RelayNotifier struct {
	url    string
	client *http.Client
}

func NewRelayNotifier(url string, timeout time.Duration) *RelayNotifier {
	return &RelayNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *RelayNotifier) Notify(ctx context.Context, form RelayForm) error {
	body, err := json.Marshal(form)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		glog.V(1).Infof("relay rejected lead status=%d body=%s", resp.StatusCode, snippet)
		return fmt.Errorf("relay status %d", resp.StatusCode)
	}
	return nil
}

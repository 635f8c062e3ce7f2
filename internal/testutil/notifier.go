package testutil

import (
	"context"
	"sync"

	"github.com/dom/musikkhylla/internal/domain"
)

// CaptureNotifier records delivered codes instead of sending them.
type CaptureNotifier struct {
	mu    sync.Mutex
	codes map[string][]string
	Err   error
}

func NewCaptureNotifier() *CaptureNotifier {
	return &CaptureNotifier{codes: make(map[string][]string)}
}

func (n *CaptureNotifier) Deliver(ctx context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	email = domain.NormalizeEmail(email)
	n.codes[email] = append(n.codes[email], code)
	return nil
}

// LastCode returns the most recent code delivered to email, or "".
func (n *CaptureNotifier) LastCode(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	codes := n.codes[domain.NormalizeEmail(email)]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

// Count returns how many codes were delivered to email.
func (n *CaptureNotifier) Count(email string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.codes[domain.NormalizeEmail(email)])
}

func (n *CaptureNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes = make(map[string][]string)
	n.Err = nil
}

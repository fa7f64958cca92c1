package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JoeShih716/go-economy-ledger/internal/app/economy/domain"
)

func TestApproverChain(t *testing.T) {
	allow := ApproverFunc(func(context.Context, domain.Intent) bool { return true })
	deny := ApproverFunc(func(context.Context, domain.Intent) bool { return false })

	calls := 0
	counting := ApproverFunc(func(context.Context, domain.Intent) bool {
		calls++
		return true
	})

	tests := []struct {
		name  string
		chain ApproverChain
		want  bool
	}{
		{"empty chain allows", nil, true},
		{"all allow", ApproverChain{allow, allow}, true},
		{"nil entries are skipped", ApproverChain{nil, allow}, true},
		{"any deny rejects", ApproverChain{allow, deny}, false},
		{"stops at first deny", ApproverChain{deny, counting}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chain.Approve(context.Background(), domain.Intent{Kind: domain.IntentCreate}))
		})
	}
	assert.Zero(t, calls)
}

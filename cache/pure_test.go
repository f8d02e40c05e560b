package cache

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestEpochKey_Format(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("7b1d4c4e-8f35-4a4b-9f7e-1c2d3e4f5a6b")

	key := epochKey(id)
	if key != "auth:epoch:7b1d4c4e-8f35-4a4b-9f7e-1c2d3e4f5a6b" {
		t.Errorf("unexpected key: %s", key)
	}
}

func TestEpochKey_DistinctPerUser(t *testing.T) {
	t.Parallel()

	a := epochKey(uuid.New())
	b := epochKey(uuid.New())

	if a == b {
		t.Error("different users should map to different keys")
	}
	if !strings.HasPrefix(a, epochKeyPrefix) || !strings.HasPrefix(b, epochKeyPrefix) {
		t.Error("keys should share the epoch prefix")
	}
}

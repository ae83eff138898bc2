package memory_test

import (
	"testing"

	"github.com/leonidyasin/tablebot/pkg/adapters/memory"
	"github.com/leonidyasin/tablebot/pkg/ports"
)

func TestMemoryStoreContract(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.NewStore())
}

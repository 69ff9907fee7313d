package sqlite

import (
	"github.com/NickSmet/mcp-local-memory/pkg/notes"
	"github.com/NickSmet/mcp-local-memory/pkg/storage"
	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

var (
	_ storage.Store = (*Driver)(nil)
	_ vector.Store  = (*Driver)(nil)
	_ notes.Ledger  = (*Driver)(nil)
)

// Command chanscope serves the creator agency API and offers lookup tools.
//
// Usage:
//
//	chanscope serve
//	chanscope lookup @MrBeast
//	chanscope estimate UCX6OQ3DkcsbYNE6H8uQQuVA 1.2M
package main

import (
	"context"

	"github.com/codeGROOVE-dev/chanscope/cmd/chanscope/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}

//go:build tools

// Пакет фиксирует версии инструментов кодогенерации в go.mod.
package main

import (
	_ "github.com/vektra/mockery/v2"
)

package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/rota/internal/constants"
)

type InitCmd struct{}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if _, err := os.Stat(ctx.ConfigPath); os.IsNotExist(err) {
		if err := ctx.Config.Save(ctx.ConfigPath); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote default configuration to: %s\n", ctx.ConfigPath)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"sign-relay/repositories"
)

type viewerConfig struct {
	DatabasePath string `env:"DATABASE_PATH,default=sign_relay.db"`
}

// Read-only conversation dump, for poking at a live database without
// going through the server.
func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <phone> <peer-phone>\n", os.Args[0])
		os.Exit(2)
	}
	phone, peer := os.Args[1], os.Args[2]

	_ = godotenv.Load()
	var config viewerConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := repositories.OpenStore(config.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	messages := repositories.NewMessageRepository(db, slog.Default())
	history, err := messages.History(context.Background(), phone, peer)
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}

	header := fmt.Sprintf(" Conversation %s <-> %s (%d messages) ", phone, peer, len(history))
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Time", "Sender", "Text"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, msg := range history {
		sender := msg.Sender
		if sender == phone {
			sender = color.FgCyan.Render(sender)
		} else {
			sender = color.FgYellow.Render(sender)
		}
		table.Append([]string{
			fmt.Sprintf("%d", msg.ID),
			msg.CreatedAt.Format("2006-01-02 15:04:05"),
			sender,
			msg.Text,
		})
	}
	table.Render()
}

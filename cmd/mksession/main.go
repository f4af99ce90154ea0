// mksession prints a signed session cookie value for a user ID.
// Hosts use it to obtain an admin session while no login provider is configured.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/published/backend/internal/config"
	"github.com/published/backend/internal/logging"
	"github.com/published/backend/pkg/auth"
)

func main() {
	userID := flag.String("user", "", "user ID to sign (must be listed in HOST_USER_IDS for admin access)")
	flag.Parse()

	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	isHost := false
	for _, id := range cfg.HostUserIDs {
		if id == *userID {
			isHost = true
			break
		}
	}
	if !isHost {
		fmt.Fprintf(os.Stderr, "warning: %s is not in HOST_USER_IDS; the session will not grant admin access\n", *userID)
	}

	token := auth.CreateSessionToken(*userID, auth.SessionSecretBytes(cfg.SessionSecret))
	fmt.Printf("%s=%s\n", auth.SessionCookieName(), token)
}

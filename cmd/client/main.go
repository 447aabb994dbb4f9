package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/client"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/session"
	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/pkg/protocol"
)

func main() {
	addr := flag.String("addr", protocol.HostAddressSentinel, "server address, or None to host a room")
	username := flag.String("username", "", "username to chat as")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "username is required")
		os.Exit(1)
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	sess := session.New(*username, *addr, logger)
	sess.OnMessage = func(msg protocol.Message) {
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp, msg.SenderName, msg.Content)
	}
	sess.OnStatus = func(st client.UserStatus) {
		fmt.Printf("* status: connected=%v host=%v admin=%v muted=%v\n",
			st.IsConnected, st.IsHost, st.IsAdmin, st.IsMuted)
	}

	if err := sess.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "could not open chat room: %v\n", err)
		os.Exit(1)
	}

	go func() {
		for err := range sess.Errors() {
			fmt.Fprintf(os.Stderr, "chat room error: %v\n", err)
		}
	}()

	go readInput(sess)

	<-sess.Done()
}

func readInput(sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var err error
		switch {
		case line == "/exit":
			sess.Close()
			return
		case strings.HasPrefix(line, "/mute "):
			err = sess.Mute(strings.TrimSpace(strings.TrimPrefix(line, "/mute ")))
		case strings.HasPrefix(line, "/admin "):
			err = sess.Admin(strings.TrimSpace(strings.TrimPrefix(line, "/admin ")))
		case strings.HasPrefix(line, "/kick "):
			err = sess.Kick(strings.TrimSpace(strings.TrimPrefix(line, "/kick ")))
		default:
			err = sess.SendMessage(line)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	sess.Close()
}

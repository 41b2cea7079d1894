package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/chatty-im/chatty/internal/client"
	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/wire"
)

const defaultServerURL = "http://localhost:5001"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	serverURL := os.Getenv("CHATTY_SERVER_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	serverFlag := fs.String("server", "", "Server URL")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(os.Args[1:]); err != nil {
		printUsage()
		return err
	}
	if *showHelp {
		printUsage()
		return nil
	}
	if *serverFlag != "" {
		serverURL = *serverFlag
	}

	if debug := os.Getenv("DEBUG"); debug == "1" || debug == "true" {
		logger.SetLevel(logger.LevelDebug)
	}

	api, err := client.NewAPI(serverURL)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	ui := &app{out: os.Stdout}
	ctrl := client.NewController(api, client.NewSocketTransport(), ui, ui.reload)
	ui.ctrl = ctrl

	fmt.Printf("Chatty terminal client (server: %s)\n", serverURL)
	fmt.Println("Type /help for commands.")

	// Resume an existing session if the previous run left one.
	if user, err := ctrl.CheckAuth(context.Background()); err == nil {
		fmt.Printf("Signed in as %s\n", user.FullName)
	}

	return ui.loop(os.Stdin)
}

// app renders controller state and notifications to the terminal and drives
// the command loop.
type app struct {
	ctrl *client.Controller
	out  io.Writer
}

func (a *app) Success(message string) {
	fmt.Fprintf(a.out, "✓ %s\n", message)
}

func (a *app) Error(message string) {
	fmt.Fprintf(a.out, "✗ %s\n", message)
}

// reload runs after a forced disconnect. Local state is gone; re-resolve the
// session from the server so the user can keep going or sign in again.
func (a *app) reload() {
	fmt.Fprintln(a.out, "Session replaced. Re-checking authentication...")
	if user, err := a.ctrl.CheckAuth(context.Background()); err == nil {
		fmt.Fprintf(a.out, "Reconnected as %s\n", user.FullName)
	} else {
		fmt.Fprintln(a.out, "Signed out. Use /login to sign in again.")
	}
}

func (a *app) loop(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		a.prompt()
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			a.send(line)
			continue
		}

		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]
		switch cmd {
		case "/help":
			printCommands()
		case "/signup":
			a.signup(scanner)
		case "/login":
			a.login(scanner)
		case "/logout":
			a.ctrl.Logout(context.Background())
		case "/users":
			a.listUsers()
		case "/chat":
			a.openChat(args)
		case "/online":
			a.showOnline()
		case "/whoami":
			a.whoami()
		case "/profile":
			a.updateProfile(args)
		case "/quit", "/exit":
			a.ctrl.DisconnectSocket()
			return nil
		default:
			fmt.Fprintf(a.out, "Unknown command %s (try /help)\n", cmd)
		}
	}
}

func (a *app) prompt() {
	if selected := a.ctrl.SelectedUser(); selected != nil {
		fmt.Fprintf(a.out, "[%s] > ", selected.FullName)
		return
	}
	fmt.Fprint(a.out, "> ")
}

func readLine(scanner *bufio.Scanner, prompt string) string {
	fmt.Print(prompt)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (a *app) signup(scanner *bufio.Scanner) {
	req := wire.SignupRequest{
		FullName: readLine(scanner, "Full name: "),
		Email:    readLine(scanner, "Email: "),
		Password: readPassword("Password: "),
	}
	a.ctrl.Signup(context.Background(), req)
}

func (a *app) login(scanner *bufio.Scanner) {
	req := wire.LoginRequest{
		Email:    readLine(scanner, "Email: "),
		Password: readPassword("Password: "),
	}
	a.ctrl.Login(context.Background(), req)
}

func (a *app) listUsers() {
	users, err := a.ctrl.LoadUsers(context.Background())
	if err != nil {
		return
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No other users yet.")
		return
	}
	for i, user := range users {
		marker := " "
		if a.ctrl.IsOnline(user.ID) {
			marker = "●"
		}
		fmt.Fprintf(a.out, "%2d. %s %s <%s>\n", i+1, marker, user.FullName, user.Email)
	}
}

func (a *app) openChat(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: /chat <number from /users>")
		return
	}
	idx, err := strconv.Atoi(args[0])
	users := a.ctrl.Users()
	if err != nil || idx < 1 || idx > len(users) {
		fmt.Fprintln(a.out, "No such user. Run /users first.")
		return
	}

	user := users[idx-1]
	a.ctrl.SelectUser(&user)
	a.ctrl.SubscribeToMessages()

	messages, err := a.ctrl.LoadMessages(context.Background())
	if err != nil {
		return
	}
	fmt.Fprintf(a.out, "--- %s ---\n", user.FullName)
	for _, msg := range messages {
		a.printMessage(msg)
	}
}

func (a *app) send(text string) {
	if a.ctrl.SelectedUser() == nil {
		fmt.Fprintln(a.out, "No conversation open. Use /users then /chat <n>.")
		return
	}
	a.ctrl.SendMessage(context.Background(), wire.SendMessageRequest{Text: text})
}

func (a *app) printMessage(msg wire.Message) {
	who := msg.SenderID
	if me := a.ctrl.AuthUser(); me != nil && msg.SenderID == me.ID {
		who = "me"
	} else if selected := a.ctrl.SelectedUser(); selected != nil && msg.SenderID == selected.ID {
		who = selected.FullName
	}
	ts := time.UnixMilli(msg.CreatedAt).Format("15:04")
	fmt.Fprintf(a.out, "%s %s: %s\n", ts, who, msg.Text)
}

func (a *app) showOnline() {
	online := a.ctrl.OnlineUsers()
	if len(online) == 0 {
		fmt.Fprintln(a.out, "Nobody online.")
		return
	}
	byID := make(map[string]string)
	for _, user := range a.ctrl.Users() {
		byID[user.ID] = user.FullName
	}
	for _, id := range online {
		name := byID[id]
		if me := a.ctrl.AuthUser(); me != nil && id == me.ID {
			name = me.FullName + " (you)"
		}
		if name == "" {
			name = id
		}
		fmt.Fprintf(a.out, "● %s\n", name)
	}
}

func (a *app) whoami() {
	user := a.ctrl.AuthUser()
	if user == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.FullName, user.Email)
}

func (a *app) updateProfile(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: /profile <picture-url>")
		return
	}
	a.ctrl.UpdateProfile(context.Background(), wire.UpdateProfileRequest{ProfilePic: args[0]})
}

func printCommands() {
	fmt.Println(`Commands:
  /signup          Create an account
  /login           Sign in
  /logout          Sign out
  /users           List users (● marks online)
  /chat <n>        Open a conversation with user n from /users
  /online          Show who is online
  /whoami          Show the signed-in user
  /profile <url>   Update the profile picture
  /quit            Exit

Anything not starting with / is sent to the open conversation.`)
}

func printUsage() {
	fmt.Println(`chat - Chatty terminal client

Usage:
  chat                 Connect to the default server
  chat --server URL    Connect to a specific server

Environment Variables:
  CHATTY_SERVER_URL  Server URL (default: http://localhost:5001)
  DEBUG              Enable debug logging (true/1)`)
}

// Command blog is a CLI client for the blog service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/term"

	"microblog/internal/client"
	"microblog/internal/errs"
	"microblog/internal/model"
)

// ---- config/token store ----

type tokenFile struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "microblog")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "microblog")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{Token: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.Token == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.Token, nil
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// promptPassword reads the password from the terminal without echo, falling
// back to the -p flag value when one was given.
func promptPassword(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	fmt.Fprint(os.Stderr, "password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(raw)
}

func fail(err error) {
	switch {
	case errors.Is(err, errs.ErrSessionMissing):
		fmt.Fprintln(os.Stderr, "error: not logged in (run `blog login` first)")
	case errors.Is(err, errs.ErrSessionInvalid):
		fmt.Fprintln(os.Stderr, "error: session expired, log in again")
	case errors.Is(err, errs.ErrTransport):
		fmt.Fprintln(os.Stderr, "error: server unreachable")
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `blog CLI
Usage:
  blog [-transport http|grpc] [-addr HOST:PORT] <cmd> [args]

Commands:
  version
  register     -u <username> -e <email> [-p <password>]
  login        -u <username> [-p <password>]            (saves token)
  create-post  -title <title> -content <content>
  get-post     -id <id>
  get-posts    [-limit <n>] [-offset <n>]
  update-post  -id <id> [-title <title>] [-content <content>]
  delete-post  -id <id>
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// withSession loads the persisted token into the client before a mutating
// call.
func withSession(c *client.Client) {
	tok, err := loadToken()
	if err != nil {
		fail(errs.ErrSessionMissing)
	}
	c.SetToken(tok)
}

// main dispatches subcommands over the selected transport.
func main() {
	transport := flag.String("transport", "http", "transport: http or grpc")
	addr := flag.String("addr", "localhost:8080", "server addr")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	if cmd == "version" {
		fmt.Printf("blog %s (%s)\n", version, buildDate)
		return
	}

	c, err := client.New(client.Transport(*transport), *addr)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password (prompted when omitted)")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *e == "" {
			fmt.Fprintln(os.Stderr, "need -u and -e")
			os.Exit(1)
		}

		res, err := c.Register(ctx, *u, *e, promptPassword(*p))
		if err != nil {
			fail(err)
		}
		if err := saveToken(res.Token, res.ExpiresAt); err != nil {
			fail(err)
		}
		printJSON(res.User)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password (prompted when omitted)")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" {
			fmt.Fprintln(os.Stderr, "need -u")
			os.Exit(1)
		}

		res, err := c.Login(ctx, *u, promptPassword(*p))
		if err != nil {
			fail(err)
		}
		if err := saveToken(res.Token, res.ExpiresAt); err != nil {
			fail(err)
		}
		printJSON(res.User)

	case "create-post":
		fs := flag.NewFlagSet("create-post", flag.ExitOnError)
		title := fs.String("title", "", "post title")
		content := fs.String("content", "", "post content")
		_ = fs.Parse(flag.Args()[1:])
		if *title == "" || *content == "" {
			fmt.Fprintln(os.Stderr, "need -title and -content")
			os.Exit(1)
		}

		withSession(c)
		p, err := c.CreatePost(ctx, *title, *content)
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "get-post":
		fs := flag.NewFlagSet("get-post", flag.ExitOnError)
		id := fs.Int64("id", 0, "post id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}

		p, err := c.GetPost(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "get-posts":
		fs := flag.NewFlagSet("get-posts", flag.ExitOnError)
		limit := fs.Int64("limit", 10, "page size")
		offset := fs.Int64("offset", 0, "page offset")
		_ = fs.Parse(flag.Args()[1:])

		ps, err := c.ListPosts(ctx, *limit, *offset)
		if err != nil {
			fail(err)
		}
		printJSON(ps)

	case "update-post":
		fs := flag.NewFlagSet("update-post", flag.ExitOnError)
		id := fs.Int64("id", 0, "post id")
		title := fs.String("title", "", "new title")
		content := fs.String("content", "", "new content")
		_ = fs.Parse(flag.Args()[1:])
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}

		// only flags the user actually set go into the patch
		var patch model.PostPatch
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "title":
				patch.Title = title
			case "content":
				patch.Content = content
			}
		})
		if patch.Empty() {
			fmt.Fprintln(os.Stderr, "need -title or -content")
			os.Exit(1)
		}

		withSession(c)
		p, err := c.UpdatePost(ctx, *id, patch)
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "delete-post":
		fs := flag.NewFlagSet("delete-post", flag.ExitOnError)
		id := fs.Int64("id", 0, "post id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}

		withSession(c)
		if err := c.DeletePost(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("deleted")

	default:
		usage()
	}
}

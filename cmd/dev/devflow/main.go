package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"bookingflow/pkg/config"
	"bookingflow/pkg/session"
)

// devflow signs a local session token and walks the read endpoints for one
// booking against a running API, printing each response.
func main() {
	var (
		apiURL    = flag.String("api-url", "", "BFF base url (defaults to http://localhost<HTTP_ADDR>)")
		code      = flag.String("booking", "", "booking code to inspect")
		quotation = flag.String("quotation", "", "quotation code to inspect (optional)")
		role      = flag.Int("role", int(session.RoleCustomer), "session role: 1 admin, 2 provider, 3 customer")
		account   = flag.Int64("account", 1, "account id placed in the token")
		ttl       = flag.Duration("ttl", time.Hour, "token lifetime")
		printOnly = flag.Bool("token-only", false, "print the signed token and exit")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.SessionSecret == "" {
		fmt.Fprintln(os.Stderr, "missing SESSION_SECRET in env/.env")
		os.Exit(2)
	}

	token, err := session.Sign(cfg.SessionSecret, *account, session.Role(*role), time.Now().Add(*ttl))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	if *printOnly {
		fmt.Println(token)
		return
	}
	if *code == "" {
		fmt.Fprintln(os.Stderr, "missing -booking")
		os.Exit(2)
	}

	if *apiURL == "" {
		*apiURL = defaultAPIURL(cfg.HTTPAddr)
	}
	base := strings.TrimRight(*apiURL, "/") + "/v1"

	paths := []string{
		"/bookings/" + *code,
		"/bookings/" + *code + "/presentation",
		"/bookings/" + *code + "/tracking",
	}
	if *quotation != "" {
		paths = append(paths, "/quotations/"+*quotation, "/quotations/"+*quotation+"/contract")
	}

	client := &http.Client{Timeout: 15 * time.Second}
	for _, p := range paths {
		if err := get(client, base+p, token); err != nil {
			fmt.Fprintf(os.Stderr, "GET %s: %v\n", p, err)
			os.Exit(1)
		}
	}
}

func get(client *http.Client, url, token string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Printf("GET %s -> %d\n%s\n\n", url, resp.StatusCode, strings.TrimSpace(string(b)))
	return nil
}

func defaultAPIURL(httpAddr string) string {
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		addr = ":8081"
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

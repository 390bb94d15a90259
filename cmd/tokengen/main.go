// tokengen mints a development bearer token shaped like the
// credential the external identity provider issues. It exists so
// the API can be exercised with curl without standing up a real
// provider; production clients never use it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/careconnect/booking-api/internal/utils"
)

func main() {
	_ = godotenv.Load()

	sub := flag.String("sub", "", "external identity id (token subject)")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *sub == "" {
		log.Fatal("-sub is required")
	}
	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}

	tok, err := utils.NewIdentityToken(secret, *sub, *email, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok)
}

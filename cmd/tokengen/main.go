// tokengen 開發用, 以設定檔中的簽章金鑰發行 bearer token
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/RoyceAzure/lab/shopcore/internal/config"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/token"
	"github.com/rs/zerolog/log"
)

func main() {
	buyerID := flag.Int64("buyer", 0, "buyer id")
	email := flag.String("email", "", "buyer email")
	role := flag.String("role", string(model.RoleBuyer), "BUYER or SELLER")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *buyerID <= 0 || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cf, err := config.LoadConfig(config.ConfigPath())
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}
	maker, err := token.NewJWTMaker(cf.AuthTokenKey)
	if err != nil {
		log.Fatal().Err(err).Msg("create token maker failed")
	}

	tok, payload, err := maker.CreateToken(*buyerID, *email, *role, *name, cf.AccessTokenDuration)
	if err != nil {
		log.Fatal().Err(err).Msg("create token failed")
	}
	fmt.Fprintf(os.Stderr, "expires at %s\n", payload.ExpiredAt.Format("2006-01-02 15:04:05"))
	fmt.Println(tok)
}

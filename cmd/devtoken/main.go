// devtoken emite un JWT firmado con JWT_SECRET para pruebas locales.
//
// Uso: go run ./cmd/devtoken [-user <id>] [-role admin|vendedor] [-minutes 60]
// Lee la misma configuración que la API (.env / variables de entorno).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-lotes-api/pkg/config"
	"github.com/jhoicas/ventas-lotes-api/pkg/jwt"
)

func main() {
	user := flag.String("user", "", "ID del usuario (por defecto un UUID nuevo)")
	role := flag.String("role", jwt.RoleSeller, "rol: admin | vendedor")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuración:", err)
		os.Exit(1)
	}
	if *role != jwt.RoleAdmin && *role != jwt.RoleSeller {
		fmt.Fprintf(os.Stderr, "rol inválido %q\n", *role)
		os.Exit(2)
	}
	if *user == "" {
		*user = uuid.NewString()
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/mallkit/internal/config"
	"github.com/dropDatabas3/mallkit/internal/email"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/partner"
	"github.com/dropDatabas3/mallkit/internal/secretbox"
	"github.com/dropDatabas3/mallkit/internal/settings"
	"github.com/dropDatabas3/mallkit/internal/shared"
	"github.com/dropDatabas3/mallkit/internal/signature"
)

type cli struct {
	ConfigPath string
	OutFormat  string // "json" | "text"
	Timeout    time.Duration

	StoreID string
	Domain  string
	AppID   string
	AppKey  string

	cfg *config.Config
	box *secretbox.Box
}

func (c *cli) load() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return err
	}
	box, err := secretbox.New(cfg.Security.SecretBoxKey)
	if err != nil {
		return fmt.Errorf("secretbox: %w", err)
	}
	c.cfg, c.box = cfg, box
	return nil
}

// store arma las credenciales: flags explícitos ganan sobre --store.
func (c *cli) store(ctx context.Context) (partner.Store, error) {
	if c.Domain != "" && c.AppID != "" && c.AppKey != "" {
		return partner.Store{Domain: c.Domain, AppID: c.AppID, AppKey: c.AppKey}, nil
	}
	if c.StoreID == "" {
		return partner.Store{}, fmt.Errorf("--store o --domain/--app-id/--app-key son requeridos")
	}
	if err := c.load(); err != nil {
		return partner.Store{}, err
	}
	repo := shared.Unsealed(shared.FromConfig(c.cfg.SharedStores), c.box)
	s, err := repo.Get(ctx, c.StoreID)
	if err != nil {
		return partner.Store{}, err
	}
	return s.Partner(), nil
}

func (c *cli) client() *partner.Client {
	return partner.NewClient(nil, c.Timeout)
}

func (c *cli) print(v any) {
	if c.OutFormat == "json" {
		p, _ := json.MarshalIndent(v, "", "  ")
		fmt.Println(string(p))
		return
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s=%v\n", k, t[k])
		}
	case nil:
		fmt.Println("ok")
	default:
		fmt.Println(t)
	}
}

// partnerErr deja el mensaje del partner tal cual; el resto se prefija.
func partnerErr(op string, err error) error {
	if partner.IsRemote(err) {
		return fmt.Errorf("%s rechazado: %s", op, err.Error())
	}
	return fmt.Errorf("%s fallo: %w", op, err)
}

func main() {
	_ = godotenv.Load()
	logger.Init(logger.Config{Env: "dev", Level: envOr("LOG_LEVEL", "warn"), ServiceName: "sharedctl"})
	defer func() { _ = logger.Sync() }()

	c := &cli{}
	root := &cobra.Command{
		Use:   "sharedctl",
		Short: "CLI para tiendas compartidas (partner API) y utilidades de mallkit",
	}
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", envOr("CONFIG_PATH", "configs/config.yaml"), "Path al YAML de config")
	root.PersistentFlags().StringVar(&c.OutFormat, "out", envOr("SHAREDCTL_OUT", "text"), "Formato de salida: json|text")
	root.PersistentFlags().DurationVar(&c.Timeout, "timeout", partner.DefaultTimeout, "Timeout por request al partner")
	root.PersistentFlags().StringVar(&c.StoreID, "store", "", "ID de la tienda compartida (config shared_stores)")
	root.PersistentFlags().StringVar(&c.Domain, "domain", "", "Base URL del partner (override de --store)")
	root.PersistentFlags().StringVar(&c.AppID, "app-id", "", "app_id (override de --store)")
	root.PersistentFlags().StringVar(&c.AppKey, "app-key", envOr("SHAREDCTL_APP_KEY", ""), "app_key (override de --store)")

	// connect
	connectCmd := &cobra.Command{
		Use:   "connect",
		Short: "Probar credenciales contra /shared/authentication/connect",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			data, err := c.client().Connect(cmd.Context(), s.Domain, s.AppID, s.AppKey)
			if err != nil {
				return partnerErr("connect", err)
			}
			c.print(data)
			return nil
		},
	}

	// items
	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "Listar el catálogo compartido",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			data, err := c.client().Items(cmd.Context(), s)
			if err != nil {
				return partnerErr("items", err)
			}
			c.print(data)
			return nil
		},
	}

	// inventory
	var invCode string
	inventoryCmd := &cobra.Command{
		Use:   "inventory",
		Short: "Consultar inventario de un item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if invCode == "" {
				return fmt.Errorf("--shared-code es requerido")
			}
			s, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			data, err := c.client().Inventory(cmd.Context(), s, invCode)
			if err != nil {
				return partnerErr("inventory", err)
			}
			c.print(data)
			return nil
		},
	}
	inventoryCmd.Flags().StringVar(&invCode, "shared-code", "", "Código compartido del item")

	// draft-card
	var draftCode string
	var draftPage int
	draftCardCmd := &cobra.Command{
		Use:   "draft-card",
		Short: "Listar tarjetas (paginado)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if draftCode == "" {
				return fmt.Errorf("--shared-code es requerido")
			}
			if draftPage < 1 {
				return fmt.Errorf("--page debe ser >= 1")
			}
			s, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			data, err := c.client().DraftCard(cmd.Context(), s, draftCode, draftPage)
			if err != nil {
				return partnerErr("draft-card", err)
			}
			c.print(data)
			return nil
		},
	}
	draftCardCmd.Flags().StringVar(&draftCode, "shared-code", "", "Código compartido del item")
	draftCardCmd.Flags().IntVar(&draftPage, "page", 1, "Página (desde 1)")

	// inventory-state
	var stCode string
	var stCard, stNum int
	inventoryStateCmd := &cobra.Command{
		Use:   "inventory-state",
		Short: "Verificar si hay stock suficiente",
		RunE: func(cmd *cobra.Command, args []string) error {
			if stCode == "" {
				return fmt.Errorf("--shared-code es requerido")
			}
			s, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := c.client().InventoryState(cmd.Context(), s, stCode, stCard, stNum)
			if err != nil {
				return partnerErr("inventory-state", err)
			}
			c.print(map[string]any{"ok": ok})
			return nil
		},
	}
	inventoryStateCmd.Flags().StringVar(&stCode, "shared-code", "", "Código compartido del item")
	inventoryStateCmd.Flags().IntVar(&stCard, "card-id", 0, "ID de tarjeta (0 = cualquiera)")
	inventoryStateCmd.Flags().IntVar(&stNum, "num", 1, "Cantidad")

	// trade
	var trCode, trContact, trPassword string
	var trNum, trCard, trDevice int
	tradeCmd := &cobra.Command{
		Use:   "trade",
		Short: "Ejecutar una compra y mostrar el secret entregado",
		RunE: func(cmd *cobra.Command, args []string) error {
			if trCode == "" || trContact == "" {
				return fmt.Errorf("--shared-code y --contact son requeridos")
			}
			s, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			secret, err := c.client().Trade(cmd.Context(), s, trCode, trContact, trNum, trCard, trDevice, trPassword)
			if err != nil {
				return partnerErr("trade", err)
			}
			c.print(map[string]any{"secret": secret})
			return nil
		},
	}
	tradeCmd.Flags().StringVar(&trCode, "shared-code", "", "Código compartido del item")
	tradeCmd.Flags().StringVar(&trContact, "contact", "", "Contacto del comprador")
	tradeCmd.Flags().IntVar(&trNum, "num", 1, "Cantidad")
	tradeCmd.Flags().IntVar(&trCard, "card-id", 0, "ID de tarjeta")
	tradeCmd.Flags().IntVar(&trDevice, "device", 0, "Tipo de dispositivo")
	tradeCmd.Flags().StringVar(&trPassword, "password", "", "Password de consulta del pedido")

	// smtp-test
	var smtpTo string
	smtpTestCmd := &cobra.Command{
		Use:   "smtp-test",
		Short: "Enviar un email de prueba con la email_config de settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if smtpTo == "" {
				return fmt.Errorf("--to es requerido")
			}
			if err := c.load(); err != nil {
				return err
			}
			src := settings.Unsealed(settings.NewStatic(c.cfg.Settings), c.box)
			m := email.NewMailer(src, email.NewSMTPTransport(), email.WithInterceptors(
				func(ctx context.Context, ev email.Event) *bool {
					if ev.Stage == email.StageSendFailure && ev.Err != nil {
						d := email.DiagnoseSMTP(ev.Err)
						fmt.Fprintf(os.Stderr, "diag=%s temporary=%t err=%v\n", d.Code, d.Temporary, ev.Err)
					}
					return nil
				},
			))
			if !m.SendMessage(cmd.Context(), smtpTo, "mallkit smtp test", "<p>SMTP OK</p>") {
				return fmt.Errorf("smtp-test fallo")
			}
			fmt.Println("sent")
			return nil
		},
	}
	smtpTestCmd.Flags().StringVar(&smtpTo, "to", "", "Destinatario")

	// sign
	var signKey string
	signCmd := &cobra.Command{
		Use:   "sign key=value [key=value...]",
		Short: "Calcular la firma partner de un set de campos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := signKey
			if key == "" {
				key = c.AppKey
			}
			if key == "" {
				return fmt.Errorf("--key (o --app-key) es requerido")
			}
			fields := make(map[string]string, len(args))
			for _, a := range args {
				k, v, ok := strings.Cut(a, "=")
				if !ok || k == "" {
					return fmt.Errorf("argumento inválido %q (esperado key=value)", a)
				}
				fields[k] = v
			}
			if c.OutFormat == "json" {
				c.print(map[string]any{"canonical": signature.Canonical(fields), signature.Field: signature.Generate(fields, key)})
				return nil
			}
			fmt.Println(signature.Generate(fields, key))
			return nil
		},
	}
	signCmd.Flags().StringVar(&signKey, "key", "", "app_key usada para firmar")

	// seal
	sealCmd := &cobra.Command{
		Use:   "seal value",
		Short: "Cifrar un valor con security.secretbox_key (prefijo sealed:)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(); err != nil {
				return err
			}
			out, err := c.box.Seal(args[0])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	// stores
	storesCmd := &cobra.Command{
		Use:   "stores",
		Short: "Listar tiendas compartidas del YAML (sin app_key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(); err != nil {
				return err
			}
			list, err := shared.FromConfig(c.cfg.SharedStores).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range list {
				if c.OutFormat == "json" {
					c.print(map[string]any{"id": s.ID, "name": s.Name, "domain": s.Domain, "app_id": s.AppID})
					continue
				}
				fmt.Printf("%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Domain, s.AppID)
			}
			return nil
		},
	}

	root.AddCommand(connectCmd, itemsCmd, inventoryCmd, draftCardCmd, inventoryStateCmd, tradeCmd)
	root.AddCommand(smtpTestCmd, signCmd, sealCmd, storesCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"expertcof/internal/billing"
	"expertcof/internal/postal"
	"expertcof/internal/profile"
	"expertcof/internal/users"
)

func newProfileCommand(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Exibir e editar o perfil",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			p, err := rt.App.Profile.Get(ctx, users.Identity{ID: userID, Email: rt.Session.Email()})
			if err != nil {
				return errors.New("Erro ao carregar perfil.")
			}
			rt.palette().profile(rt.Out, p)
			return nil
		},
	}
	cmd.AddCommand(
		newProfileUpdateCommand(rt),
		newProfilePasswordCommand(rt),
		newSubscriptionCommand(rt, "subscribe", "Assinar o plano Profissional", billing.OpCheckout),
		newSubscriptionCommand(rt, "portal", "Abrir o portal de assinatura", billing.OpPortal),
		newCancelCommand(rt),
		newVerifyCheckoutCommand(rt),
	)
	return cmd
}

func newProfileUpdateCommand(rt *Runtime) *cobra.Command {
	var (
		name, cpf, phone, cep string
		number, complement    string
		address, district     string
		city, state           string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Atualizar dados do perfil",
		Long:  "Atualiza apenas os campos informados. Com --cep o endereço é preenchido pela consulta de CEP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			current, err := rt.App.Profile.Get(ctx, users.Identity{ID: userID, Email: rt.Session.Email()})
			if err != nil {
				return errors.New("Erro ao carregar perfil.")
			}
			update := updateFrom(current)

			flags := cmd.Flags()
			set := func(flag string, dst *string, v string) {
				if flags.Changed(flag) {
					*dst = v
				}
			}
			set("name", &update.Name, name)
			set("cpf", &update.TaxID, cpf)
			set("phone", &update.Phone, phone)
			set("number", &update.Number, number)
			set("complement", &update.Complement, complement)
			set("address", &update.Address, address)
			set("district", &update.District, district)
			set("city", &update.City, city)
			set("state", &update.State, state)

			if flags.Changed("cep") {
				var addr postal.Address
				err := rt.busy("Buscando CEP...", func() error {
					var err error
					addr, err = rt.App.Postal.Lookup(ctx, cep)
					return err
				})
				if err != nil {
					return errors.New(postal.UserMessage(err))
				}
				update.ZipCode = addr.PostalCode
				update.Address = addr.Street
				update.District = addr.District
				update.City = addr.City
				update.State = addr.State
			}

			p, err := rt.App.Profile.Update(ctx, userID, update)
			if err != nil {
				return errors.New("Erro ao atualizar perfil.")
			}
			pal := rt.palette()
			pal.good.Fprintln(rt.Out, profile.UpdatedMessage)
			pal.profile(rt.Out, p)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "nome completo")
	f.StringVar(&cpf, "cpf", "", "CPF (somente números ou formatado)")
	f.StringVar(&phone, "phone", "", "telefone com DDD")
	f.StringVar(&cep, "cep", "", "CEP; preenche endereço, bairro, cidade e UF")
	f.StringVar(&number, "number", "", "número")
	f.StringVar(&complement, "complement", "", "complemento")
	f.StringVar(&address, "address", "", "logradouro")
	f.StringVar(&district, "district", "", "bairro")
	f.StringVar(&city, "city", "", "cidade")
	f.StringVar(&state, "state", "", "UF")
	return cmd
}

func updateFrom(p users.Profile) users.ProfileUpdate {
	return users.ProfileUpdate{
		Name:       p.Name,
		TaxID:      p.TaxID,
		Phone:      p.Phone,
		ZipCode:    p.ZipCode,
		Address:    p.Address,
		Number:     p.Number,
		Complement: p.Complement,
		District:   p.District,
		City:       p.City,
		State:      p.State,
	}
}

func newProfilePasswordCommand(rt *Runtime) *cobra.Command {
	var password, confirm string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Alterar a senha",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, tok, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			if password, err = rt.valueOrPrompt(password, "Nova senha: "); err != nil {
				return err
			}
			if confirm, err = rt.valueOrPrompt(confirm, "Confirme a nova senha: "); err != nil {
				return err
			}
			if err := rt.App.Profile.ChangePassword(ctx, tok.AccessToken, password, confirm); err != nil {
				return errors.New(profile.PasswordError(err))
			}
			rt.palette().good.Fprintln(rt.Out, profile.PasswordMessage)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "new", "", "nova senha")
	cmd.Flags().StringVar(&confirm, "confirm", "", "confirmação da nova senha")
	return cmd
}

func newSubscriptionCommand(rt *Runtime, use, short string, op billing.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			var url string
			err = rt.busy("Aguarde...", func() error {
				if op == billing.OpPortal {
					url, err = rt.App.Profile.Portal(ctx, userID)
				} else {
					url, err = rt.App.Profile.Checkout(ctx, userID)
				}
				return err
			})
			if err != nil {
				return errors.New(profile.SubscriptionError(op, err))
			}
			fmt.Fprintln(rt.Out, "Abra o endereço abaixo no navegador:")
			rt.palette().heading.Fprintln(rt.Out, url)
			return nil
		},
	}
}

func newCancelCommand(rt *Runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancelar a assinatura",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			if !yes {
				answer, err := rt.prompt("Tem certeza que deseja cancelar sua assinatura? [s/N] ")
				if err != nil {
					return err
				}
				if answer != "s" && answer != "S" {
					fmt.Fprintln(rt.Out, "Cancelamento abortado.")
					return nil
				}
			}
			var plan users.Plan
			err = rt.busy("Cancelando...", func() error {
				plan, err = rt.App.Profile.Cancel(ctx, userID)
				return err
			})
			if err != nil {
				return errors.New(profile.SubscriptionError(billing.OpCancel, err))
			}
			pal := rt.palette()
			pal.good.Fprintln(rt.Out, profile.CancelledMessage)
			fmt.Fprintf(rt.Out, "Plano atual: %s\n", plan.Label())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "não pedir confirmação")
	return cmd
}

func newVerifyCheckoutCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-checkout <session-id>",
		Short: "Confirmar um pagamento concluído",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			v, err := rt.App.Dashboard.VerifyCheckout(ctx, userID, args[0])
			if err != nil {
				return errors.New(billing.UserMessage(billing.OpVerify, err))
			}
			if !v.Confirmed() {
				fmt.Fprintf(rt.Out, "Pagamento ainda não confirmado (%s).\n", v.Status)
				return nil
			}
			rt.palette().good.Fprintln(rt.Out, "Pagamento confirmado! Plano Premium ativado.")
			return nil
		},
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"expertcof/internal/auth"
)

func newLoginCommand(rt *Runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Entrar com email e senha",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = rt.valueOrPrompt(email, "Email: "); err != nil {
				return err
			}
			if password, err = rt.valueOrPrompt(password, "Senha: "); err != nil {
				return err
			}

			var tok *oauth2.Token
			err = rt.busy("Entrando...", func() error {
				tok, err = rt.App.Auth.SignIn(cmd.Context(), email, password)
				return err
			})
			if err != nil {
				return errors.New(auth.UserMessage(err, "Erro ao fazer login"))
			}
			if err := rt.Session.SignIn(tok); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			rt.palette().good.Fprintf(rt.Out, "Conectado como %s\n", rt.Session.Email())
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email da conta")
	cmd.Flags().StringVarP(&password, "password", "p", "", "senha (solicitada quando omitida)")
	return cmd
}

func newSignupCommand(rt *Runtime) *cobra.Command {
	var email, password, name, role string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Criar uma conta",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := auth.ParseRole(role)
			if err != nil {
				return errors.New("Perfil deve ser franchisee, consultant ou lawyer.")
			}
			if name, err = rt.valueOrPrompt(name, "Nome: "); err != nil {
				return err
			}
			if email, err = rt.valueOrPrompt(email, "Email: "); err != nil {
				return err
			}
			if password, err = rt.valueOrPrompt(password, "Senha: "); err != nil {
				return err
			}

			var user auth.User
			err = rt.busy("Criando conta...", func() error {
				user, err = rt.App.Auth.SignUp(cmd.Context(), auth.SignUpRequest{
					Email:    email,
					Password: password,
					Name:     name,
					Role:     r,
				})
				return err
			})
			if err != nil {
				return errors.New(auth.UserMessage(err, "Erro ao criar conta"))
			}
			rt.palette().good.Fprintf(rt.Out, "Conta criada para %s. Verifique seu email e execute `cof login`.\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email da conta")
	cmd.Flags().StringVarP(&password, "password", "p", "", "senha")
	cmd.Flags().StringVarP(&name, "name", "n", "", "nome completo")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleFranchisee), "franchisee, consultant ou lawyer")
	return cmd
}

func newForgotPasswordCommand(rt *Runtime) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Enviar email de recuperação de senha",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = rt.valueOrPrompt(email, "Email: "); err != nil {
				return err
			}
			redirect := ""
			if rt.App.Config.AppURL != "" {
				redirect = rt.App.Config.AppURL + "/update-password"
			}
			if err := rt.App.Auth.ResetPassword(cmd.Context(), email, redirect); err != nil {
				return errors.New(auth.UserMessage(err, "Erro ao enviar email de recuperação."))
			}
			fmt.Fprintln(rt.Out, "Se houver uma conta com este email, você receberá um link para redefinir sua senha em instantes.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email da conta")
	return cmd
}

func newLogoutCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Encerrar a sessão",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.Session.SignOut(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Fprintln(rt.Out, "Sessão encerrada.")
			return nil
		},
	}
}

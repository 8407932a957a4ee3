package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/session"
	"github.com/felixgeelhaar/studydash/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your study session",
	Long: `Sign in, sign out and inspect the stored session.

The session token and your profile are kept in session.path
(default ~/.studydash/session.json). Set session.passphrase to encrypt them.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in and store the session for later commands.

Missing credentials are prompted for when running in a terminal.
If a session already exists, the current user is shown instead.`,
	Example: `  studydash auth login
  studydash auth login --email ada@example.com --password s3cret`,
	RunE: runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Example: `  studydash auth register
  studydash auth register --name Ada --email ada@example.com --password s3cret`,
	RunE: runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether you are signed in",
	Long: `Restore the stored session and report the signed-in user.

A stored token the backend no longer accepts is discarded.`,
	RunE: runAuthStatus,
}

var authProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile, refreshed from the backend",
	RunE:  runAuthProfile,
}

var authUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	Example: `  studydash auth update --name "Ada Lovelace"
  studydash auth update --avatar-url https://example.com/ada.png`,
	RunE: runAuthUpdate,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, decision, err := setup(cmd, session.RouteGuestOnly)
	if err != nil {
		return err
	}
	if decision == session.DecisionRedirectHome {
		return a.alreadyLoggedIn()
	}

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	creds, err := credentials(tui.Credentials{Email: email, Password: password}, false)
	if err != nil {
		return err
	}

	resp, err := a.session.Login(ctxOf(cmd), api.Credentials{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return err
	}
	return a.print(messageView{Message: fmt.Sprintf("Logged in as %s", resp.User.DisplayName())})
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	a, decision, err := setup(cmd, session.RouteGuestOnly)
	if err != nil {
		return err
	}
	if decision == session.DecisionRedirectHome {
		return a.alreadyLoggedIn()
	}

	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	creds, err := credentials(tui.Credentials{Name: name, Email: email, Password: password}, true)
	if err != nil {
		return err
	}

	resp, err := a.session.Register(ctxOf(cmd), api.NewUser{Name: creds.Name, Email: creds.Email, Password: creds.Password})
	if err != nil {
		return err
	}
	return a.print(messageView{Message: fmt.Sprintf("Welcome, %s! Your account is ready.", resp.User.DisplayName())})
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	a.session.Logout()
	return a.print(messageView{Message: "Logged out"})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	a.session.Initialize(ctxOf(cmd))

	snap := a.session.Snapshot()
	view := statusView{LoggedIn: snap.Authenticated(), APIURL: a.cfg.API.URL, User: snap.User}
	if exp, ok := session.TokenExpiry(snap.Token); ok && view.LoggedIn {
		view.ExpiresAt = &exp
	}
	return a.print(view)
}

func runAuthProfile(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}
	user, err := a.session.Refresh(ctxOf(cmd))
	if err != nil {
		return err
	}
	return a.print(userView{User: user})
}

func runAuthUpdate(cmd *cobra.Command, args []string) error {
	var update api.ProfileUpdate
	if cmd.Flags().Changed("name") {
		name, _ := cmd.Flags().GetString("name")
		update.Name = &name
	}
	if cmd.Flags().Changed("avatar-url") {
		avatar, _ := cmd.Flags().GetString("avatar-url")
		update.AvatarURL = &avatar
	}

	a, err := protected(cmd)
	if err != nil {
		return err
	}

	user, err := a.client.UpdateProfile(ctxOf(cmd), update)
	if err != nil {
		return err
	}
	if err := a.session.PatchUser(*user); err != nil {
		return err
	}
	return a.print(userView{User: user})
}

func (a *app) alreadyLoggedIn() error {
	user := a.session.User()
	return a.print(messageView{Message: fmt.Sprintf("Already logged in as %s. Run 'studydash auth logout' first to switch accounts.", user.DisplayName())})
}

// credentials fills missing fields with a form when a terminal is attached,
// otherwise it fails the way cobra reports missing required flags
func credentials(c tui.Credentials, register bool) (tui.Credentials, error) {
	var missing []string
	if register && c.Name == "" {
		missing = append(missing, `"name"`)
	}
	if c.Email == "" {
		missing = append(missing, `"email"`)
	}
	if c.Password == "" {
		missing = append(missing, `"password"`)
	}
	if len(missing) == 0 {
		return c, nil
	}

	if !tui.ShouldPrompt() {
		return c, fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))
	}
	return tui.PromptCredentials(c, register)
}

func init() {
	authLoginCmd.Flags().String("email", "", "account email")
	authLoginCmd.Flags().String("password", "", "account password")

	authRegisterCmd.Flags().String("name", "", "display name")
	authRegisterCmd.Flags().String("email", "", "account email")
	authRegisterCmd.Flags().String("password", "", "account password")

	authUpdateCmd.Flags().String("name", "", "new display name")
	authUpdateCmd.Flags().String("avatar-url", "", "new avatar URL")
	authUpdateCmd.MarkFlagsOneRequired("name", "avatar-url")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authProfileCmd)
	authCmd.AddCommand(authUpdateCmd)
	rootCmd.AddCommand(authCmd)
}

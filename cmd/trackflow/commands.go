package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trackflow-app/trackflow/internal/buildconfig"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/onboarding"
)

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "trackflow",
		Short:         "TrackFlow business onboarding client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API base URL including /api/v1 (default $TRACKFLOW_API_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "per-request timeout (default $TRACKFLOW_REQUEST_TIMEOUT)")
	root.PersistentFlags().StringVar(&a.sessionFile, "session-file", "", "session file (default $TRACKFLOW_SESSION_FILE)")

	root.AddCommand(
		a.signupCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.registerBusinessCommand(),
		a.inviteCommand(),
		a.acceptInviteCommand(),
		a.updateBusinessCommand(),
		a.avatarCommand(),
		a.updateEmployeeCommand(),
		a.employeesCommand(),
		a.industriesCommand(),
		versionCommand(a.printer),
	)
	return root
}

// submit runs one flow through an Attempt. Interrupting the command
// abandons the flow so a late response is not written to the session.
func submit[T any](ctx context.Context, a *app, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, a.orch.Abandon)
	defer stop()

	var attempt onboarding.Attempt[T]
	a.logger.Debug("submitting", zap.String("flow", name))
	result, err := attempt.Submit(ctx, fn)
	a.logger.Debug("submission finished", zap.String("flow", name), zap.Stringer("state", attempt.State()))
	return result, err
}

func (a *app) signupCommand() *cobra.Command {
	var in domain.UserCreate
	var fullName string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("full-name") {
				in.FullName = &fullName
			}
			u, err := submit(cmd.Context(), a, "signup", func(ctx context.Context) (*domain.User, error) {
				return a.orch.Signup(ctx, in)
			})
			if err != nil {
				return err
			}
			a.printer.line("Account created for %s. Run `trackflow login` to sign in.", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (8 to 40 characters)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	return cmd
}

func (a *app) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := submit(cmd.Context(), a, "login", func(ctx context.Context) (*onboarding.Result, error) {
				return a.orch.Login(ctx, email, password)
			})
			if err != nil {
				return err
			}
			if res.Employee == nil {
				a.printer.line("Signed in. You are not part of a business yet: run `trackflow register-business`.")
				return nil
			}
			a.printer.line("Signed in as %s (business %s).", res.Employee.Name, res.Employee.BusinessID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Destroy the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.orch.Logout(); err != nil {
				return err
			}
			a.printer.line("Signed out.")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Resolve the session against the server and show it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := submit(cmd.Context(), a, "resolve", a.orch.Resolve)
			if err != nil {
				return err
			}
			if res.Employee == nil {
				a.printer.line("Signed in without a business.")
				return nil
			}
			out := map[string]any{"employee": res.Employee}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()
			if b, err := a.orch.CurrentBusiness(ctx); err == nil {
				out["business"] = b
			} else {
				a.logger.Warn("could not load business", zap.Error(err))
			}
			return a.printer.json(out)
		},
	}
}

// profileFlags binds the optional business profile fields. Only flags the
// user set end up non-nil.
type profileFlags struct {
	values map[string]*string
}

var profileFields = []string{
	"organizational-type", "national-id", "national-id-type", "country", "city",
	"address", "phone", "email", "website", "bank-account", "logo",
}

func bindProfileFlags(cmd *cobra.Command, prefix string) *profileFlags {
	p := &profileFlags{values: map[string]*string{}}
	for _, f := range profileFields {
		p.values[f] = cmd.Flags().String(prefix+f, "", "business "+f)
	}
	return p
}

func (p *profileFlags) profile(cmd *cobra.Command, prefix string) domain.BusinessProfile {
	get := func(name string) *string {
		if !cmd.Flags().Changed(prefix + name) {
			return nil
		}
		return p.values[name]
	}
	return domain.BusinessProfile{
		OrganizationalType: get("organizational-type"),
		NationalID:         get("national-id"),
		NationalIDType:     get("national-id-type"),
		Country:            get("country"),
		City:               get("city"),
		Address:            get("address"),
		Phone:              get("phone"),
		Email:              get("email"),
		Website:            get("website"),
		BankAccount:        get("bank-account"),
		Logo:               get("logo"),
	}
}

func optional(cmd *cobra.Command, name string, v *string) *string {
	if cmd.Flags().Changed(name) {
		return v
	}
	return nil
}

func (a *app) registerBusinessCommand() *cobra.Command {
	var name, employeeName, employeeRole, employeeDescription, industry string
	cmd := &cobra.Command{
		Use:   "register-business",
		Short: "Register a business with yourself as its first employee",
		Args:  cobra.NoArgs,
	}
	profile := bindProfileFlags(cmd, "")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req := onboarding.BusinessRegistrationRequest{
			Name:            name,
			BusinessProfile: profile.profile(cmd, ""),
			EmployeeIn: domain.EmployeeProfile{
				Name:        employeeName,
				Role:        optional(cmd, "employee-role", &employeeRole),
				Description: optional(cmd, "employee-description", &employeeDescription),
			},
		}
		if industry != "" {
			id, err := uuid.Parse(industry)
			if err != nil {
				return fmt.Errorf("invalid --industry-id: %w", err)
			}
			req.BusinessIndustryID = &id
		}

		res, err := submit(cmd.Context(), a, "register-business", func(ctx context.Context) (*onboarding.Result, error) {
			return a.orch.RegisterBusiness(ctx, req)
		})
		if err != nil {
			return err
		}
		return a.printer.json(res)
	}
	cmd.Flags().StringVar(&name, "name", "", "business name")
	cmd.Flags().StringVar(&employeeName, "employee-name", "", "your name within the business")
	cmd.Flags().StringVar(&employeeRole, "employee-role", "", "your role")
	cmd.Flags().StringVar(&employeeDescription, "employee-description", "", "your description")
	cmd.Flags().StringVar(&industry, "industry-id", "", "business industry id")
	return cmd
}

func (a *app) updateBusinessCommand() *cobra.Command {
	var name string
	var active bool
	cmd := &cobra.Command{
		Use:   "update-business",
		Short: "Update the current business settings",
		Args:  cobra.NoArgs,
	}
	profile := bindProfileFlags(cmd, "")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		upd := onboarding.SettingsUpdate{
			Name:            optional(cmd, "name", &name),
			BusinessProfile: profile.profile(cmd, ""),
		}
		if cmd.Flags().Changed("active") {
			upd.IsActive = &active
		}
		b, err := submit(cmd.Context(), a, "update-business", func(ctx context.Context) (*domain.Business, error) {
			return a.orch.UpdateBusiness(ctx, upd)
		})
		if err != nil {
			return err
		}
		return a.printer.json(b)
	}
	cmd.Flags().StringVar(&name, "name", "", "business name")
	cmd.Flags().BoolVar(&active, "active", true, "whether the business is active")
	return cmd
}

func (a *app) inviteCommand() *cobra.Command {
	var email, business string
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite someone to join your business by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := onboarding.InviteRequest{Email: email}
			if business != "" {
				id, err := uuid.Parse(business)
				if err != nil {
					return fmt.Errorf("invalid --business-id: %w", err)
				}
				req.BusinessID = id
			}
			issued, err := submit(cmd.Context(), a, "invite", func(ctx context.Context) (*domain.InviteIssued, error) {
				return a.issuer.Invite(ctx, req)
			})
			if err != nil {
				return err
			}
			a.printer.line("Invitation sent to %s (expires %s).", issued.Email, issued.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "invitee email address")
	cmd.Flags().StringVar(&business, "business-id", "", "business id (default: current business)")
	return cmd
}

func (a *app) acceptInviteCommand() *cobra.Command {
	var req onboarding.InviteAcceptanceRequest
	var fullName, role, description string
	cmd := &cobra.Command{
		Use:   "accept-invite",
		Short: "Create your account from an invitation token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.NewUser.FullName = optional(cmd, "full-name", &fullName)
			req.NewEmployee.Role = optional(cmd, "role", &role)
			req.NewEmployee.Description = optional(cmd, "description", &description)

			res, err := submit(cmd.Context(), a, "accept-invite", func(ctx context.Context) (*onboarding.Result, error) {
				return a.orch.AcceptInvite(ctx, req)
			})
			if err != nil {
				return err
			}
			a.printer.line("Welcome, %s. You joined business %s.", res.Employee.Name, res.Employee.BusinessID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Token, "token", "", "invitation token")
	cmd.Flags().StringVar(&req.NewUser.Email, "email", "", "the invited email address")
	cmd.Flags().StringVar(&req.NewUser.Password, "password", "", "password (8 to 40 characters)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&req.NewEmployee.Name, "name", "", "your name within the business")
	cmd.Flags().StringVar(&role, "role", "", "your role")
	cmd.Flags().StringVar(&description, "description", "", "your description")
	return cmd
}

func (a *app) avatarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <image>",
		Short: "Upload a new avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			e, err := submit(cmd.Context(), a, "avatar", func(ctx context.Context) (*domain.Employee, error) {
				return a.orch.UploadAvatar(ctx, filepath.Base(args[0]), f)
			})
			if err != nil {
				return err
			}
			if e.Avatar != nil {
				a.printer.line("Avatar updated: %s", a.client.AvatarURL(*e.Avatar))
			}
			return nil
		},
	}
}

func (a *app) updateEmployeeCommand() *cobra.Command {
	var name, description, role string
	var active bool
	cmd := &cobra.Command{
		Use:   "update-employee",
		Short: "Update your employee profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := onboarding.ProfileUpdate{
				Name:        optional(cmd, "name", &name),
				Description: optional(cmd, "description", &description),
				Role:        optional(cmd, "role", &role),
			}
			if cmd.Flags().Changed("active") {
				upd.IsActive = &active
			}
			e, err := submit(cmd.Context(), a, "update-employee", func(ctx context.Context) (*domain.Employee, error) {
				return a.orch.UpdateEmployee(ctx, upd)
			})
			if err != nil {
				return err
			}
			return a.printer.json(e)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "your name within the business")
	cmd.Flags().StringVar(&description, "description", "", "your description")
	cmd.Flags().StringVar(&role, "role", "", "your role")
	cmd.Flags().BoolVar(&active, "active", true, "whether you are an active employee")
	return cmd
}

func (a *app) employeesCommand() *cobra.Command {
	var page domain.Page
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "List employees of the current business",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := submit(cmd.Context(), a, "employees", func(ctx context.Context) (*domain.Employees, error) {
				return a.orch.ListEmployees(ctx, page)
			})
			if err != nil {
				return err
			}
			return a.printer.json(list)
		},
	}
	cmd.Flags().IntVar(&page.Skip, "skip", 0, "entries to skip")
	cmd.Flags().IntVar(&page.Limit, "limit", 100, "maximum entries")
	return cmd
}

func (a *app) industriesCommand() *cobra.Command {
	var page domain.Page
	cmd := &cobra.Command{
		Use:   "industries",
		Short: "List business industries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := submit(cmd.Context(), a, "industries", func(ctx context.Context) (*domain.BusinessIndustries, error) {
				return a.orch.ListIndustries(ctx, page)
			})
			if err != nil {
				return err
			}
			return a.printer.json(list)
		},
	}
	cmd.Flags().IntVar(&page.Skip, "skip", 0, "entries to skip")
	cmd.Flags().IntVar(&page.Limit, "limit", 100, "maximum entries")

	var in domain.BusinessIndustryCreate
	var description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a business industry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Description = optional(cmd, "description", &description)
			industry, err := submit(cmd.Context(), a, "create-industry", func(ctx context.Context) (*domain.BusinessIndustry, error) {
				return a.orch.CreateIndustry(ctx, in)
			})
			if err != nil {
				return err
			}
			return a.printer.json(industry)
		},
	}
	create.Flags().StringVar(&in.Title, "title", "", "industry title")
	create.Flags().StringVar(&description, "description", "", "industry description")
	cmd.AddCommand(create)
	return cmd
}

func versionCommand(p *printer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			p.line("trackflow %s (%s)", buildconfig.Version(), buildconfig.Commit())
		},
	}
}

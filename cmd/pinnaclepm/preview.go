package main

import (
	"encoding/base64"
	"fmt"

	"pinnaclepm/internal/notify"
	"pinnaclepm/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

// preview-email renders both outbound messages for a sample application so
// copy changes can be checked without sending anything.
var previewEmailCommand = &cli.Command{
	Name:  "preview-email",
	Usage: "Render the operator and applicant emails for a sample application",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Dump the full message structs",
		},
	},
	Action: func(c *cli.Context) error {
		composer := &notify.Composer{
			FromName:       "Pinnacle Property Management",
			FromEmail:      "no-reply@example.com",
			OperatorEmail:  "operator@example.com",
			DocumentsEmail: "rental@pprmgt.com",
		}

		draft := sampleDraft()

		for _, role := range []notify.Role{notify.RoleOperator, notify.RoleApplicant} {
			msg := composer.Compose(role, draft, "12345678")

			fmt.Printf("=== %s ===\n", role)
			fmt.Printf("To: %s\nSubject: %s\n\n%s\n", msg.To, msg.Subject, msg.Body)

			if c.Bool("verbose") {
				pp.Println(msg)
			}
		}

		return nil
	},
}

func sampleDraft() *types.Draft {
	return &types.Draft{
		ID:                  "sample",
		FullName:            "Jane Applicant",
		Email:               "jane@example.com",
		PhoneNumber:         "555-0100",
		CurrentAddress:      "12 Elm Street, Springfield",
		MonthlyIncome:       "4200",
		AnnualIncome:        "50400",
		OutstandingDebts:    "0",
		MissedRentPayments:  types.No,
		HasEvictionHistory:  types.No,
		HasBankruptcy:       types.No,
		NumberOfOccupants:   "2",
		HasChildren:         types.No,
		HasPets:             types.Yes,
		PetDetails:          "One small dog",
		HasSmoking:          types.No,
		PlannedStayDuration: "2 years",
		MoveInDate:          "2025-10-01",
		NeedsFlexibility:    types.No,
		HasConsent:          types.Yes,
		TourDate:            "2025-09-20",
		TourTime:            "10:00 AM",
		PaymentMethod:       types.PaymentMethodZelle,
		PaymentReceipt: &types.Receipt{
			Name:    "receipt.png",
			Type:    "image/png",
			Content: base64.StdEncoding.EncodeToString([]byte("sample receipt")),
		},
	}
}

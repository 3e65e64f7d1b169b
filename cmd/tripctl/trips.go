package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
	"github.com/pkordes/growth-logbook/backend/internal/mapview"
	"github.com/pkordes/growth-logbook/backend/internal/mapview/headless"
	"github.com/pkordes/growth-logbook/backend/internal/service"
)

// tripPage is the output of the list command.
type tripPage struct {
	Trips []domain.TripRecord `json:"trips"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
	Total int                 `json:"total"`
}

func newListCmd(s *session) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded trips",
		Args:  cobra.NoArgs,
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			p := domain.NewPaginationParams(&page, &limit)
			trips, total, err := s.trips.ListPaged(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tripPage{Trips: trips, Page: p.Page, Limit: p.Limit, Total: total})
		}),
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number (1-indexed)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Trips per page (max 100)")
	return cmd
}

func newGetCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "get LABEL",
		Short: "Show the trip recorded for a region",
		Args:  cobra.ExactArgs(1),
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			trip, err := s.trips.GetByRegion(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), trip)
		}),
	}
}

func newSaveCmd(s *session) *cobra.Command {
	var trip domain.TripRecord
	cmd := &cobra.Command{
		Use:   "save LABEL",
		Short: "Create or replace the trip for a region",
		Args:  cobra.ExactArgs(1),
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			trip.Province = args[0]
			saved, err := s.trips.Save(cmd.Context(), trip)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), saved)
		}),
	}
	cmd.Flags().StringVar(&trip.StartDate, "start", "", "Start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&trip.EndDate, "end", "", "End date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&trip.Travelers, "travelers", "t", "", "Travel companions")
	cmd.Flags().IntVar(&trip.Rating, "rating", 0, "Rating 0-5")
	cmd.Flags().StringVarP(&trip.Notes, "notes", "n", "", "Free-form notes")
	cmd.Flags().StringArrayVar(&trip.Photos, "photo", nil, "Photo reference (repeatable)")
	return cmd
}

func newDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete LABEL",
		Short: "Delete the trip recorded for a region",
		Args:  cobra.ExactArgs(1),
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			if err := s.trips.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		}),
	}
}

func newPhotoCmd(s *session) *cobra.Command {
	photoCmd := &cobra.Command{Use: "photo", Short: "Photo operations"}

	photoCmd.AddCommand(&cobra.Command{
		Use:   "add LABEL REF",
		Short: "Append a photo reference to a trip",
		Args:  cobra.ExactArgs(2),
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			trip, err := s.trips.AddPhoto(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), trip)
		}),
	})

	photoCmd.AddCommand(&cobra.Command{
		Use:   "rm LABEL INDEX",
		Short: "Remove the photo at INDEX from a trip",
		Args:  cobra.ExactArgs(2),
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("photo index %q: %w", args[1], domain.ErrValidation)
			}
			trip, err := s.trips.RemovePhoto(cmd.Context(), args[0], idx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), trip)
		}),
	})
	return photoCmd
}

func newVisitedCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "visited",
		Short: "List the region IDs that have a trip",
		Args:  cobra.NoArgs,
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			ids, err := s.trips.VisitedRegions(cmd.Context())
			if err != nil {
				return err
			}
			if ids == nil {
				ids = []domain.RegionID{}
			}
			return printJSON(cmd.OutOrStdout(), ids)
		}),
	}
}

func newClassifyCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Print the visited classification the map is coloured with",
		Args:  cobra.NoArgs,
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			b := mapview.NewBinding(&headless.Engine{}, s.trips, s.regions, mapview.Config{},
				mapview.WithLogger(discardLogger()))
			return printJSON(cmd.OutOrStdout(), b.ClassificationData(cmd.Context()))
		}),
	}
}

func newExportCmd(s *session) *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every trip joined with its region",
		Args:  cobra.NoArgs,
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			rows, err := s.exports.Export(cmd.Context())
			if err != nil {
				return err
			}
			if asCSV {
				return service.WriteCSV(cmd.OutOrStdout(), rows)
			}
			return printJSON(cmd.OutOrStdout(), rows)
		}),
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write CSV instead of JSON")
	return cmd
}

func newImportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Save every trip in a JSON array file",
		Args:  cobra.ExactArgs(1),
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var trips []domain.TripRecord
			if err := json.Unmarshal(data, &trips); err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			n, err := s.trips.Import(cmd.Context(), trips)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d\n", n, len(trips))
			return err
		}),
	}
}

func newSeedCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store the demo trips if the logbook is empty",
		Args:  cobra.NoArgs,
		RunE: storeRunE(s, func(cmd *cobra.Command, args []string) error {
			n, err := s.trips.SeedDemo(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d\n", n)
			return err
		}),
	}
}

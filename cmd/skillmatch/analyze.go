package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/skillmatch/backend/internal/domain"
	"github.com/skillmatch/backend/internal/infrastructure/render"
	"github.com/skillmatch/backend/internal/usecase"
	"github.com/spf13/cobra"
)

// analyzeOptions holds the flags of the analyze command
type analyzeOptions struct {
	resumeFile string
	resumeText string
	role       string
	jobFile    string
	jobURL     string
	reportPath string
	chartPath  string
	asJSON     bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a resume against a role, job description or job posting",
		Long: "Score a resume against exactly one target: a catalog role (--role), a job description " +
			"file (--job-file) or a job posting URL (--job-url). The resume comes from --resume " +
			"(a text, PDF or DOCX file, or - for stdin) or from --text.",
		Example: "  skillmatch analyze --resume resume.pdf --role \"Data Analyst\"\n" +
			"  cat resume.txt | skillmatch analyze --resume - --job-file posting.txt --report\n" +
			"  skillmatch analyze --text \"Go, Docker, Kubernetes\" --job-url https://example.com/jobs/42 --json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.resumeFile, "resume", "", "Resume file (.txt, .pdf, .docx) or - to read stdin")
	flags.StringVar(&opts.resumeText, "text", "", "Resume text")
	flags.StringVar(&opts.role, "role", "", "Catalog role to compare against (see 'skillmatch roles')")
	flags.StringVar(&opts.jobFile, "job-file", "", "File holding a job description")
	flags.StringVar(&opts.jobURL, "job-url", "", "Job posting URL to fetch")
	flags.StringVar(&opts.reportPath, "report", "", "Write the PDF report (use --report=path to choose the file)")
	flags.Lookup("report").NoOptDefVal = domain.ReportFilename
	flags.StringVar(&opts.chartPath, "chart", "", "Write the skills chart PNG to this file")
	flags.BoolVar(&opts.asJSON, "json", false, "Print the analysis as JSON")

	cmd.MarkFlagsMutuallyExclusive("resume", "text")
	cmd.MarkFlagsOneRequired("resume", "text")
	cmd.MarkFlagsMutuallyExclusive("role", "job-file", "job-url")
	cmd.MarkFlagsOneRequired("role", "job-file", "job-url")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions) error {
	withReports := opts.reportPath != "" || opts.chartPath != ""

	service, closeService, err := newService(root, withReports)
	if err != nil {
		return err
	}
	defer closeService()

	resume, err := readResume(cmd, service, opts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(resume) == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), domain.EmptyResumeWarning)
		return domain.ErrEmptyResume
	}

	request := &domain.AnalysisRequest{
		ResumeText: resume,
		Role:       opts.role,
		JobURL:     opts.jobURL,
	}
	if opts.jobFile != "" {
		data, err := os.ReadFile(opts.jobFile)
		if err != nil {
			return fmt.Errorf("failed to read job description file: %w", err)
		}
		request.JobDescription = string(data)
	}

	ctx := cmd.Context()
	analysis, err := service.Analyze(ctx, request)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			return fmt.Errorf("failed to encode analysis: %w", err)
		}
	} else if err := printResult(out, analysis.Result); err != nil {
		return err
	}

	if !withReports {
		return nil
	}
	if !analysis.HasReport() {
		return fmt.Errorf("report could not be generated")
	}

	// File notices go to stderr so --json output stays parseable
	notices := cmd.ErrOrStderr()
	if opts.reportPath != "" {
		data, err := service.Report(ctx, analysis.ReportID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.reportPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(notices, "Report written to %s\n", opts.reportPath)
	}
	if opts.chartPath != "" {
		data, err := service.Chart(ctx, analysis.ReportID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.chartPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		fmt.Fprintf(notices, "Chart written to %s\n", opts.chartPath)
	}

	return nil
}

// readResume returns the resume text from --text, a file or stdin
func readResume(cmd *cobra.Command, service *usecase.AnalysisService, opts *analyzeOptions) (string, error) {
	if opts.resumeFile == "" {
		return opts.resumeText, nil
	}

	var (
		data []byte
		err  error
	)
	name := opts.resumeFile
	if name == "-" {
		name = "stdin"
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}

	return service.ResumeFromDocument(name, data)
}

// printResult writes the score line and the matching/missing skills side by side
func printResult(w io.Writer, result domain.MatchResult) error {
	fmt.Fprintf(w, "Match Score: %s%%\n\n", render.FormatResultScore(result))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCHING SKILLS\tMISSING SKILLS")

	rows := max(len(result.Matched), len(result.Missing))
	for i := 0; i < rows; i++ {
		var matched, missing string
		if i < len(result.Matched) {
			matched = result.Matched[i]
		}
		if i < len(result.Missing) {
			missing = result.Missing[i]
		}
		fmt.Fprintf(tw, "%s\t%s\n", matched, missing)
	}

	return tw.Flush()
}

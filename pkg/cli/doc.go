/*
Package cli provides command-line helpers for the tonecoach command.

Output Formatting:

Command results are printed as text, JSON or CSV. Results that implement
Table are rendered as aligned columns in text mode and as rows in CSV mode:

	format, err := cli.ParseFormat(flagOutput)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli

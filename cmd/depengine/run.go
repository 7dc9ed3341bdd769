package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"github.com/forgebase/depengine/internal/config"
	"github.com/forgebase/depengine/internal/engine"
	"github.com/forgebase/depengine/internal/evmsigner"
	"github.com/forgebase/depengine/internal/infrastructure/events"
	"github.com/forgebase/depengine/internal/job"
	"github.com/forgebase/depengine/internal/ports"
	"github.com/forgebase/depengine/internal/rpcprovider"
	"github.com/forgebase/depengine/internal/verify"
)

type runOptions struct {
	jobPath          string
	privateKeyEnv    string
	platforms        []string
	etherscanAPIKey  string
	etherscanBaseURL string
	sourcifyURL      string
	skipPostCheck    bool
}

func newRunCmd(logger ports.Logger) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Decode and execute a job document against its target network",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), logger, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.jobPath, "job", "j", "", "path to the job YAML document")
	cmd.Flags().StringVar(&opts.privateKeyEnv, "private-key-env", "DEPENGINE_PRIVATE_KEY", "environment variable holding the signing key (hex)")
	cmd.Flags().StringSliceVar(&opts.platforms, "verify-platforms", nil, "default verification platforms, e.g. etherscan,sourcify")
	cmd.Flags().StringVar(&opts.etherscanAPIKey, "etherscan-api-key", "", "API key for the Etherscan-style verification platform")
	cmd.Flags().StringVar(&opts.etherscanBaseURL, "etherscan-base-url", "https://api.etherscan.io/api", "Etherscan-style API base URL")
	cmd.Flags().StringVar(&opts.sourcifyURL, "sourcify-url", "https://sourcify.dev", "Sourcify-style server URL")
	cmd.Flags().BoolVar(&opts.skipPostCheck, "skip-post-check", false, "do not re-evaluate a job's skip_condition after it runs")
	_ = cmd.MarkFlagRequired("job")

	return cmd
}

func runJob(ctx context.Context, logger ports.Logger, opts *runOptions) error {
	file, err := os.Open(opts.jobPath)
	if err != nil {
		return fmt.Errorf("open job document: %w", err)
	}
	defer file.Close()

	doc, err := config.Decode(file)
	if err != nil {
		return fmt.Errorf("decode job document: %w", err)
	}
	j, templates := config.ToJob(opts.jobPath, *doc)
	network := config.ToJobNetwork(doc.Network)

	provider, err := rpcprovider.Dial(network.RPCURL)
	if err != nil {
		return fmt.Errorf("connect provider: %w", err)
	}
	defer provider.Destroy()

	var signer ports.Signer
	if key := os.Getenv(opts.privateKeyEnv); strings.TrimSpace(key) != "" {
		s, err := evmsigner.New(
			key,
			new(big.Int).SetUint64(network.ChainID),
			provider.SuggestGasPrice,
			func(c context.Context, address common.Address) (uint64, error) {
				return provider.PendingNonceAt(c, address.Hex())
			},
			func(c context.Context, tx *types.Transaction) error {
				raw, err := tx.MarshalBinary()
				if err != nil {
					return err
				}
				_, err = provider.BroadcastTransaction(c, hexutil.Encode(raw))
				return err
			},
		)
		if err != nil {
			return fmt.Errorf("construct signer: %w", err)
		}
		signer = s
	}

	registry := verify.NewRegistry()
	if opts.etherscanAPIKey != "" {
		registry.Register(verify.NewEtherscan(verify.EtherscanConfig{
			APIBaseURL: opts.etherscanBaseURL,
			APIKey:     opts.etherscanAPIKey,
		}))
	}
	registry.Register(verify.NewSourcify(verify.SourcifyConfig{ServerURL: opts.sourcifyURL}))

	publisher := events.NewLoggingPublisher(logger.With("component", "event_publisher"))

	runOpts := job.DefaultRunOptions()
	if opts.skipPostCheck {
		runOpts.PostExecutionCheck = false
	}

	ec := engine.NewExecutionContext(
		nil, // contract artifact hydration is out of scope; Contract(ref) lookups error until wired
		network,
		j.Constants,
		provider,
		signer,
		opts.platforms,
		registry,
		runOpts,
		logger,
		publisher,
	)

	dispatcher := engine.NewDispatcher(templates)
	return dispatcher.ExecuteJob(ctx, ec, j)
}

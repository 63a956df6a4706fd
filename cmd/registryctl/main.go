// registryctl is the command-line interface to the configuration registry:
// it registers product blueprints, instantiates clusters from them and
// inspects the resulting trees.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/bigdatacesga/config-registry/pkg/kv"
	"github.com/bigdatacesga/config-registry/pkg/registry"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	endpoint  string
	logLevel  string
	logFormat string

	reg *registry.Registry
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "registryctl",
		Short: "Configuration registry CLI",
		Long: `registryctl manages the configuration registry for cluster instances:
product blueprints, instantiated clusters and their node/service trees.

The registry lives in a Consul KV store; point --endpoint (or the
REGISTRY_ENDPOINT environment variable) at it.`,
		Version:       fmt.Sprintf("%s (built: %s)", version, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(opts.logLevel, opts.logFormat); err != nil {
				return err
			}
			endpoint := opts.endpoint
			if endpoint == "" {
				endpoint = os.Getenv("REGISTRY_ENDPOINT")
			}
			if endpoint == "" {
				endpoint = kv.DefaultEndpoint
			}
			store, err := kv.NewConsulStore(endpoint)
			if err != nil {
				return err
			}
			opts.reg = registry.New(store)
			slog.Debug("connected", "endpoint", endpoint)
			return nil
		},
	}

	opts.addFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRegisterCmd(opts))
	rootCmd.AddCommand(newDeregisterCmd(opts))
	rootCmd.AddCommand(newInstantiateCmd(opts))
	rootCmd.AddCommand(newDeinstantiateCmd(opts))
	rootCmd.AddCommand(newProductsCmd(opts))
	rootCmd.AddCommand(newClustersCmd(opts))
	rootCmd.AddCommand(newGetCmd(opts))
	rootCmd.AddCommand(newDumpCmd(opts))

	return rootCmd
}

func (o *rootOptions) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.endpoint, "endpoint", "",
		"registry endpoint, e.g. http://127.0.0.1:8500/v1/kv")
	flags.StringVar(&o.logLevel, "log-level", "info",
		"log level, one of: debug, info, warn, error")
	flags.StringVar(&o.logFormat, "log-format", "logfmt",
		"log format, one of: logfmt, json")
}

func setupLogging(level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	case "logfmt", "text":
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var (
		name             string
		productVersion   string
		description      string
		templateFile     string
		templateType     string
		optionsFile      string
		orquestratorFile string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a product blueprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := registry.ProductSpec{
				Name:         name,
				Version:      productVersion,
				Description:  description,
				TemplateType: templateType,
			}
			var err error
			if spec.Template, err = readFile(templateFile); err != nil {
				return err
			}
			if optionsFile != "" {
				if spec.Options, err = readFile(optionsFile); err != nil {
					return err
				}
			}
			if orquestratorFile != "" {
				if spec.Orquestrator, err = readFile(orquestratorFile); err != nil {
					return err
				}
			}

			product, err := opts.reg.Register(cmd.Context(), spec)
			if err != nil {
				return err
			}
			slog.Info("product registered", "dn", product.DN())
			fmt.Println(product.DN())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "product name (required)")
	cmd.Flags().StringVar(&productVersion, "product-version", "", "product version (required)")
	cmd.Flags().StringVar(&description, "description", "", "human-readable description")
	cmd.Flags().StringVar(&templateFile, "template", "", "path to the template file (required)")
	cmd.Flags().StringVar(&templateType, "template-type", "yaml+jinja2",
		"template type: json+jinja2 or yaml+jinja2")
	cmd.Flags().StringVar(&optionsFile, "options", "", "path to the JSON option schema")
	cmd.Flags().StringVar(&orquestratorFile, "orquestrator", "", "path to the orquestrator script")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("product-version")
	cmd.MarkFlagRequired("template")

	return cmd
}

func newDeregisterCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deregister NAME VERSION",
		Short: "Remove a product blueprint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.reg.Deregister(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			slog.Info("product deregistered", "name", args[0], "version", args[1])
			return nil
		},
	}
}

func newInstantiateCmd(opts *rootOptions) *cobra.Command {
	var (
		user       string
		optionArgs []string
	)

	cmd := &cobra.Command{
		Use:   "instantiate PRODUCT VERSION",
		Short: "Materialise a new cluster instance of a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := parseOptions(optionArgs)
			if err != nil {
				return err
			}
			cluster, err := opts.reg.Instantiate(cmd.Context(), user, args[0], args[1], options)
			if err != nil {
				return err
			}
			slog.Info("cluster instantiated", "dn", cluster.DN())
			fmt.Println(cluster.DN())
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "owner of the new instance (required)")
	cmd.Flags().StringArrayVarP(&optionArgs, "option", "o", nil,
		"option override as name=value (repeatable)")
	cmd.MarkFlagRequired("user")

	return cmd
}

func newDeinstantiateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deinstantiate USER PRODUCT VERSION ID",
		Short: "Remove a cluster instance",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid instance id %q: %w", args[3], err)
			}
			if err := opts.reg.Deinstantiate(cmd.Context(), args[0], args[1], args[2], id); err != nil {
				return err
			}
			slog.Info("cluster deinstantiated", "user", args[0], "product", args[1],
				"version", args[2], "id", id)
			return nil
		},
	}
}

func newProductsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products [NAME [VERSION]]",
		Short: "List registered products",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, productVersion := argAt(args, 0), argAt(args, 1)
			products, err := opts.reg.QueryProducts(cmd.Context(), name, productVersion)
			if err != nil {
				return err
			}
			for _, p := range products {
				fmt.Println(p.DN())
			}
			return nil
		},
	}
}

func newClustersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clusters [USER [PRODUCT [VERSION]]]",
		Short: "List materialised cluster instances",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clusters, err := opts.reg.QueryClusters(cmd.Context(),
				argAt(args, 0), argAt(args, 1), argAt(args, 2))
			if err != nil {
				return err
			}
			for _, c := range clusters {
				fmt.Println(c.DN())
			}
			return nil
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get {cluster|product|node|service} DN",
		Short: "Print an entity's attribute set as YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				attrs map[string]string
				err   error
			)
			ctx := cmd.Context()
			switch args[0] {
			case "cluster":
				attrs, err = opts.reg.GetClusterByDN(args[1]).ToMap(ctx)
			case "product":
				attrs, err = opts.reg.GetProductByDN(args[1]).ToMap(ctx)
			case "node":
				attrs, err = registry.NewNode(opts.reg.Store(), args[1]).ToMap(ctx)
			case "service":
				attrs, err = registry.NewService(opts.reg.Store(), args[1]).ToMap(ctx)
			default:
				return fmt.Errorf("unknown entity type %q", args[0])
			}
			if err != nil {
				return err
			}
			return printYAML(attrs)
		},
	}
}

func newDumpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump DN",
		Short: "Print every key below a DN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := opts.reg.Store().Recurse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(tree))
			for k := range tree {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s: %s\n", k, tree[k])
			}
			return nil
		},
	}
}

// parseOptions turns repeated name=value flags into an option map. Values
// that parse as integers or booleans are typed accordingly so templates can
// use them in arithmetic and conditions.
func parseOptions(args []string) (map[string]any, error) {
	options := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid option %q: expected name=value", arg)
		}
		if n, err := strconv.Atoi(value); err == nil {
			options[name] = n
		} else if b, err := strconv.ParseBool(value); err == nil {
			options[name] = b
		} else {
			options[name] = value
		}
	}
	return options, nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func printYAML(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

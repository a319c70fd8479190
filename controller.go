package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"
	"github.com/zalando-incubator/aws-network-provisioner/aws"
	"github.com/zalando-incubator/aws-network-provisioner/topology"
)

const (
	logFormatText = "text"
	logFormatJSON = "json"
)

var (
	buildstamp = "Not set"
	githash    = "Not set"
	version    = "Not set"

	debugFlag       bool
	quietFlag       bool
	logFormat       string
	awsRegion       string
	credentialsFile string
	maxRetries      int
	metricsAddress  string
	pollInterval    time.Duration
	waitTimeout     time.Duration
	instanceType    string

	planFile            string
	stateFile           string
	keyDir              string
	instanceID          string
	keyName             string
	resourceID          string
	tagExpressions      []string
	volumeID            string
	snapshotName        string
	snapshotDescription string
	snapshotWait        bool
)

var (
	output     io.Writer = os.Stdout
	newAdapter           = defaultNewAdapter
)

func newApp() *kingpin.Application {
	app := kingpin.New("aws-network-provisioner", "Builds and operates small AWS network topologies.")
	app.Version(fmt.Sprintf("%s\nBuild time: %s\nCommit: %s", version, buildstamp, githash))
	app.DefaultEnvars()

	app.Flag("debug", "Enables debug logging level").Default("false").BoolVar(&debugFlag)
	app.Flag("quiet", "Enables quiet logging").Default("false").BoolVar(&quietFlag)
	app.Flag("log-format", "Log output format").Default(logFormatText).EnumVar(&logFormat, logFormatText, logFormatJSON)
	app.Flag("region", "AWS region; discovered from instance metadata when empty, falling back to "+aws.DefaultRegion).
		Envar("AWS_REGION").StringVar(&awsRegion)
	app.Flag("credentials-file", "Properties file with accessKey and secretKey, replacing the default credential chain").
		StringVar(&credentialsFile)
	app.Flag("max-retries", "Maximum number of attempts for a failing AWS request").
		Default(fmt.Sprint(aws.DefaultMaxRetries)).IntVar(&maxRetries)
	app.Flag("metrics-address", "Address to serve Prometheus metrics on, disabled when empty").StringVar(&metricsAddress)
	app.Flag("poll-interval", "Interval between state checks while waiting for instances and snapshots").
		Default(aws.DefaultPollInterval.String()).DurationVar(&pollInterval)
	app.Flag("wait-timeout", "Maximum time to wait for instances and snapshots").
		Default(aws.DefaultWaitTimeout.String()).DurationVar(&waitTimeout)
	app.Flag("instance-type", "Instance type used when the plan does not name one").
		Default(string(aws.DefaultInstanceType)).StringVar(&instanceType)

	provision := app.Command("provision", "Builds the topology described by a plan file")
	provision.Flag("plan", "YAML plan file; the built-in plan is used when empty").StringVar(&planFile)
	provision.Flag("state-file", "File the created resource ids are written to").Default("state.yaml").StringVar(&stateFile)
	provision.Flag("key-dir", "Directory private keys are written to").Default(".").StringVar(&keyDir)

	app.Command("default-plan", "Prints the built-in plan")

	start := app.Command("start-instance", "Starts an instance after a dry run permission check")
	start.Arg("instance", "Instance ID").Required().StringVar(&instanceID)

	stop := app.Command("stop-instance", "Stops an instance after a dry run permission check")
	stop.Arg("instance", "Instance ID").Required().StringVar(&instanceID)

	keyPair := app.Command("create-key-pair", "Creates a key pair and stores its private key")
	keyPair.Arg("name", "Key pair name").Required().StringVar(&keyName)
	keyPair.Flag("key-dir", "Directory the private key is written to").Default(".").StringVar(&keyDir)

	tag := app.Command("tag", "Sets tags on an EC2 resource")
	tag.Arg("resource", "Resource ID").Required().StringVar(&resourceID)
	tag.Arg("tags", "Tags as KEY=VALUE").Required().StringsVar(&tagExpressions)

	untag := app.Command("untag", "Removes tags from an EC2 resource")
	untag.Arg("resource", "Resource ID").Required().StringVar(&resourceID)
	untag.Arg("tags", "Tags as KEY, or KEY=VALUE to only remove a matching value").Required().StringsVar(&tagExpressions)

	snapshot := app.Command("snapshot", "Creates a snapshot of a volume")
	snapshot.Arg("volume", "Volume ID").Required().StringVar(&volumeID)
	snapshot.Flag("name", "Snapshot name").StringVar(&snapshotName)
	snapshot.Flag("description", "Snapshot description").StringVar(&snapshotDescription)
	snapshot.Flag("wait", "Waits until the snapshot is completed").Default("false").BoolVar(&snapshotWait)

	app.Command("whoami", "Prints the identity of the configured credentials")

	return app
}

// loadSettings parses the command line and returns the selected command.
func loadSettings() (string, error) {
	// flags without a default keep the value of an earlier parse
	awsRegion, credentialsFile, metricsAddress, planFile = "", "", "", ""
	instanceID, keyName, resourceID, volumeID = "", "", "", ""
	snapshotName, snapshotDescription = "", ""
	tagExpressions = nil

	return newApp().Parse(os.Args[1:])
}

func configureLogging() {
	if logFormat == logFormatJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{})
	}

	log.SetLevel(log.InfoLevel)
	if debugFlag {
		log.SetLevel(log.DebugLevel)
	}
	if quietFlag {
		log.SetLevel(log.WarnLevel)
	}
}

func defaultNewAdapter(ctx context.Context) (*aws.Adapter, error) {
	return aws.NewAdapter(ctx, awsRegion, credentialsFile, maxRetries)
}

func main() {
	command, err := loadSettings()
	if err != nil {
		log.Fatal(err)
	}
	configureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := newMetrics()
	if metricsAddress != "" {
		go m.serve(metricsAddress)
	}

	if err := run(ctx, command, m); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, m *metrics) error {
	if command == "default-plan" {
		return printPlan(topology.DefaultPlan())
	}

	adapter, err := newAdapter(ctx)
	if err != nil {
		return err
	}
	adapter = adapter.WithInstanceType(instanceType).
		WithPollInterval(pollInterval).
		WithWaitTimeout(waitTimeout)

	log.Debugf("running %s in %s with instance type %s", command, adapter.Region(), adapter.InstanceType())

	switch command {
	case "provision":
		return provisionPlan(ctx, adapter, m)
	case "start-instance":
		if err := adapter.StartInstance(ctx, instanceID); err != nil {
			return err
		}
		m.changesTotal.updated(resourceInstance)
	case "stop-instance":
		if err := adapter.StopInstance(ctx, instanceID); err != nil {
			return err
		}
		m.changesTotal.updated(resourceInstance)
	case "create-key-pair":
		path, err := adapter.CreateKeyPair(ctx, keyName, keyDir)
		if err != nil {
			return err
		}
		m.changesTotal.created(resourceKeyPair)
		fmt.Fprintln(output, path)
	case "tag":
		tags, err := parseTags(tagExpressions)
		if err != nil {
			return err
		}
		if err := adapter.SetTags(ctx, resourceID, tags); err != nil {
			return err
		}
		m.changesTotal.updated(resourceTag)
	case "untag":
		tags, err := parseTags(tagExpressions)
		if err != nil {
			return err
		}
		if err := adapter.DeleteTags(ctx, resourceID, tags); err != nil {
			return err
		}
		m.changesTotal.deleted(resourceTag)
	case "snapshot":
		return snapshotVolume(ctx, adapter, m)
	case "whoami":
		identity, err := adapter.CallerIdentity(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(output, identity)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func printPlan(plan *topology.Plan) error {
	buf, err := plan.Marshal()
	if err != nil {
		return fmt.Errorf("unable to encode plan: %w", err)
	}
	_, err = output.Write(buf)
	return err
}

func provisionPlan(ctx context.Context, adapter *aws.Adapter, m *metrics) error {
	plan := topology.DefaultPlan()
	if planFile != "" {
		var err error
		if plan, err = topology.LoadPlan(planFile); err != nil {
			return err
		}
	} else {
		log.Info("no plan file given, using the built-in plan")
	}

	_, err := newWorker(adapter, m, keyDir, stateFile).provision(ctx, plan)
	return err
}

func snapshotVolume(ctx context.Context, adapter *aws.Adapter, m *metrics) error {
	name := snapshotName
	if name == "" {
		name = volumeID
	}
	id, err := adapter.CreateSnapshot(ctx, name, volumeID, snapshotDescription, nil)
	if err != nil {
		return err
	}
	m.changesTotal.created(resourceSnapshot)
	if snapshotWait {
		if err := adapter.WaitForSnapshot(ctx, id); err != nil {
			return err
		}
	}
	fmt.Fprintln(output, id)
	return nil
}

func parseTags(expressions []string) (map[string]string, error) {
	tags := make(map[string]string, len(expressions))
	for _, expr := range expressions {
		key, value, err := aws.ParseTag(expr)
		if err != nil {
			return nil, err
		}
		tags[key] = value
	}
	return tags, nil
}

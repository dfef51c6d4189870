package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"decree-workers/internal/common/aws"
	"decree-workers/internal/common/config"
	"decree-workers/internal/decree/templates"
	gdb "decree-workers/internal/workers/decree/generate-decree-batch"
	"decree-workers/pkg/registry"
)

// buildTemplateSource prefers local files and falls back to S3 when enabled.
func buildTemplateSource(ctx context.Context, cfg *config.Config) (templates.Source, *s3.Client, error) {
	local := templates.LocalSource{Dir: cfg.Storage.TemplateDir}
	if !cfg.Storage.S3.Enabled {
		return local, nil, nil
	}
	client, err := aws.NewS3Client(ctx, cfg.Storage.S3.Region, cfg.Storage.S3.Endpoint)
	if err != nil {
		return nil, nil, err
	}
	remote := templates.NewS3Source(client, cfg.Storage.S3.Bucket, cfg.Storage.S3.TemplatePrefix)
	return templates.Chain{local, remote}, client, nil
}

func buildSelector(cfg *config.Config, source templates.Source) (*templates.Selector, error) {
	opts := []templates.Option{templates.WithTemplateIDs(cfg.Decree.Templates)}
	if cfg.Decree.RegistryPath != "" {
		reg, err := registry.LoadRegistry(cfg.Decree.RegistryPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, templates.WithRegistry(reg))
	}
	return templates.NewSelector(source, opts...), nil
}

func buildUploader(cfg *config.Config, client *s3.Client) gdb.ArchiveUploader {
	if client == nil {
		return nil
	}
	return aws.NewArchiveStore(client, cfg.Storage.S3.Bucket, cfg.Storage.S3.ArchivePrefix)
}

func buildNotifier(ctx context.Context, cfg *config.Config) (gdb.BatchNotifier, error) {
	n := cfg.Notifications
	if !n.SNS.Enabled && !n.SES.Enabled {
		return nil, nil
	}

	var (
		snsClient aws.SNSAPI
		sesClient aws.SESAPI
	)
	if n.SNS.Enabled {
		c, err := aws.NewSNSClient(ctx, n.Region)
		if err != nil {
			return nil, err
		}
		snsClient = c
	}
	if n.SES.Enabled {
		c, err := aws.NewSESClient(ctx, n.Region)
		if err != nil {
			return nil, err
		}
		sesClient = c
	}
	return aws.NewNotifier(snsClient, n.SNS.TopicARN, sesClient, n.SES.FromEmail, n.SES.ToEmails), nil
}

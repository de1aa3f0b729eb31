package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrsync/modules/hris/infrastructure/delivery"
	"github.com/iota-uz/hrsync/modules/hris/infrastructure/hrapi"
	"github.com/iota-uz/hrsync/modules/hris/infrastructure/template"
	"github.com/iota-uz/hrsync/modules/hris/services"
	"github.com/iota-uz/hrsync/pkg/configuration"
)

const (
	destinationSFTP       = "sftp"
	destinationRosterSFTP = "sftp_roster"
	destinationDrive      = "gdrive"
)

// app holds the components built from one Configuration.
type app struct {
	conf       *configuration.Configuration
	log        *logrus.Logger
	employees  *hrapi.Client
	pipeline   *services.Pipeline
	dispatcher *delivery.Dispatcher
}

func newApp(ctx context.Context, conf *configuration.Configuration) (*app, error) {
	log := conf.Logger()

	employees, err := newHRClient(conf, conf.HRIS.APIKey, log.WithField("component", "hrapi"))
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	attendanceKey := conf.HRIS.AttendanceAPIKey
	if attendanceKey == "" {
		attendanceKey = conf.HRIS.APIKey
	}
	attendance, err := newHRClient(conf, attendanceKey, log.WithField("component", "hrapi-attendance"))
	if err != nil {
		return nil, withCode(exitConfig, err)
	}

	destinations, err := newDestinations(conf, log)
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	dispatcher := delivery.NewDispatcher(conf.Export.OutputDir, destinations, logrus.NewEntry(log))
	if conf.Export.DestinationStartupCheck {
		if err := dispatcher.Check(ctx); err != nil {
			return nil, withCode(exitDelivery, err)
		}
	}

	pipeline := services.NewPipeline(services.PipelineOptions{
		Employees:  employees,
		Attendance: attendance,
		Templates:  template.NewLoader(log.WithField("component", "template")),
		Delivery:   dispatcher,
		Settings:   exportSettings(&conf.Export),
		PageSize:   conf.HRIS.PageSize,
		TemplatePaths: map[services.Kind]string{
			services.KindDirectory:  conf.Export.DirectoryTemplate,
			services.KindRoster:     conf.Export.RosterTemplate,
			services.KindAttendance: conf.Export.AttendanceTemplate,
		},
		Destinations: map[services.Kind][]string{
			services.KindDirectory:  trimAll(conf.Export.DirectoryDestinations),
			services.KindRoster:     trimAll(conf.Export.RosterDestinations),
			services.KindAttendance: trimAll(conf.Export.AttendanceDestinations),
		},
		Placement: services.Placement{
			StartRow:    conf.Export.TemplateStartRow,
			StartColumn: conf.Export.TemplateStartColumn,
		},
		Logger: logrus.NewEntry(log),
	})

	return &app{conf: conf, log: log, employees: employees, pipeline: pipeline, dispatcher: dispatcher}, nil
}

func newHRClient(conf *configuration.Configuration, apiKey string, log *logrus.Entry) (*hrapi.Client, error) {
	o := conf.HRIS
	httpClient := hrapi.NewHTTPClient(o.RequestTimeout)
	tokens := hrapi.NewTokenManager(hrapi.TokenOptions{
		TokenURL:     o.TokenURL,
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		GrantType:    o.GrantType,
		Scope:        o.Scope,
		APIKey:       apiKey,
		HTTPClient:   httpClient,
		Retry:        o.RetryPolicy(),
		Logger:       log,
	})
	return hrapi.NewClient(tokens, hrapi.Options{
		EmployeesURL:    o.EmployeesURL,
		AttendanceURL:   o.AttendanceURL,
		RangeParams:     [2]string{o.AttendanceRangeParams[0], o.AttendanceRangeParams[1]},
		PageDelay:       o.PageDelay,
		AttendanceDelay: o.AttendanceDelay,
		AuthRetries:     o.AuthRetries,
		Retry:           o.RetryPolicy(),
		RequestIDHeader: conf.RequestIDHeader,
		HTTPClient:      httpClient,
		Logger:          log,
	})
}

func newDestinations(conf *configuration.Configuration, log *logrus.Logger) ([]delivery.Destination, error) {
	var out []delivery.Destination
	for name, o := range map[string]configuration.SFTPOptions{
		destinationSFTP:       conf.SFTP,
		destinationRosterSFTP: conf.RosterSFTP,
	} {
		if !o.Enabled() {
			continue
		}
		dest, err := delivery.NewSFTPDestination(delivery.SFTPOptions{
			Name:           name,
			Host:           o.Host,
			Port:           o.Port,
			User:           o.User,
			Password:       o.Password,
			PrivateKeyPath: o.PrivateKeyPath,
			Passphrase:     o.Passphrase,
			HostKey:        o.HostKey,
			Folder:         o.Folder,
			Timeout:        o.Timeout,
			Logger:         log.WithField("destination", name),
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, dest)
	}

	if conf.Drive.Enabled() {
		creds, err := delivery.ReadCredentials(conf.Drive.CredentialsJSON, conf.Drive.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", destinationDrive, err)
		}
		dest, err := delivery.NewDriveDestination(delivery.DriveOptions{
			Name:            destinationDrive,
			CredentialsJSON: creds,
			FolderID:        conf.Drive.FolderID,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", destinationDrive, err)
		}
		out = append(out, dest)
	}
	return out, nil
}

func exportSettings(o *configuration.ExportOptions) services.ExportSettings {
	return services.ExportSettings{
		ActiveStatus:    o.ActiveStatusCode,
		ExcludeNumbers:  trimAll(o.ExcludedEmployeeNumbers),
		EmailDomains:    trimAll(o.EmailDomains),
		DirectoryGroups: trimAll(o.DirectoryGroups),
		GroupIdentifier: o.GroupIdentifier,
		Placeholder:     services.Contact{Email: o.Placeholder(), Name: o.PlaceholderName},

		RosterTitles:        trimAll(o.RosterTitles),
		RosterNumbers:       trimAll(o.RosterEmployeeNumbers),
		RosterRequireActive: o.RosterRequireActive,

		AttendanceColumns: o.AttendanceColumns,
		SkipStatuses:      trimAll(o.AttendanceSkipStatuses),
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

package topology

import (
	"path"

	"apptest/internal/config"
)

// Service names double as host names on the compose network.
const (
	ServiceApp = "aiidalab"
	ServiceHub = "seleniumhub"
)

const (
	// SeleniumVersion pins the hub and every browser node to one grid release.
	SeleniumVersion = "3.141.59-20200525"

	AppPort = "8888"
	HubPort = "4444"

	// AppMountRoot is where applications live inside the AiiDAlab image.
	AppMountRoot = "/home/aiida/apps"
)

// HubImage is the Selenium hub image.
func HubImage() string {
	return "selenium/hub:" + SeleniumVersion
}

// NodeImage is the Selenium node image for browser.
func NodeImage(browser config.Browser) string {
	return "selenium/node-" + string(browser) + ":" + SeleniumVersion
}

// AppMountTarget is the in-container directory the application is mounted at.
func AppMountTarget(appName string) string {
	return path.Join(AppMountRoot, appName)
}

// Build declares the fixed five-service topology for cfg: the application
// server, the hub, and one node per supported browser.
func Build(cfg config.RunConfig) Manifest {
	app := Service{
		Image:  cfg.Image,
		Expose: []string{AppPort},
		Environment: map[string]string{
			"AIIDALAB_SETUP": "true",
			"JUPYTER_TOKEN":  cfg.JupyterToken,
		},
	}
	if !cfg.Bundled {
		app.Volumes = []string{cfg.AppPath + "/:" + AppMountTarget(cfg.AppName)}
	}

	m := Manifest{}.
		with(ServiceApp, app).
		with(ServiceHub, Service{
			Image:  HubImage(),
			Expose: []string{HubPort},
		})

	for _, browser := range config.Browsers {
		m = m.with(string(browser), Service{
			Image:       NodeImage(browser),
			Volumes:     []string{"/dev/shm:/dev/shm"},
			DependsOn:   []string{ServiceHub},
			Environment: map[string]string{"HUB_HOST": ServiceHub},
		})
	}
	return m
}

package command

import (
	"fmt"

	"github.com/flant/negentropy/sepctl/pkg/config"
	"github.com/flant/negentropy/sepctl/pkg/vsts"
)

func credential(settings config.EndpointSettings) (vsts.Credential, error) {
	switch settings.Provider {
	case config.ProviderAppCenter:
		return vsts.AppCenterCredential(settings.Token), nil
	case config.ProviderSonarQube:
		return vsts.SonarQubeCredential(settings.URL, settings.Username, settings.Password), nil
	}
	return nil, fmt.Errorf("provider '%s' is not supported", settings.Provider)
}

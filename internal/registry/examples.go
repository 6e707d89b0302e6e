package registry

// ExampleProperties holds ready-made properties for common cloud provider
// node types. They are offered instead of a bare skeleton when a template's
// type is one of these.
var ExampleProperties = map[string]map[string]any{
	// aws
	"cloudify.nodes.aws.ec2.Vpc": {
		"resource_config": map[string]any{"CidrBlock": "10.10.0.0/16"},
	},
	"cloudify.nodes.aws.ec2.Subnet": {
		"resource_config": map[string]any{
			"CidrBlock":        "10.10.4.0/24",
			"AvailabilityZone": "us-east-1a",
		},
	},
	"cloudify.nodes.aws.ec2.SecurityGroup": {
		"resource_config": map[string]any{
			"GroupName":   "ExampleSecurityGroup",
			"Description": "Example Security Group",
		},
	},
	"cloudify.nodes.aws.ec2.SecurityGroupRuleIngress": {
		"resource_config": map[string]any{
			"IpPermissions": []any{
				map[string]any{
					"IpProtocol": "tcp",
					"FromPort":   22,
					"ToPort":     22,
					"IpRanges":   []any{map[string]any{"CidrIp": "0.0.0.0/0"}},
				},
			},
		},
	},
	"cloudify.nodes.aws.iam.Role": {
		"resource_config": map[string]any{
			"RoleName": "ExampleRole",
			"Path":     "/",
			"AssumeRolePolicyDocument": map[string]any{
				"Version": "2012-10-17",
				"Statement": []any{
					map[string]any{
						"Effect":    "Allow",
						"Principal": map[string]any{"Service": "eks.amazonaws.com"},
						"Action":    "sts:AssumeRole",
					},
				},
			},
		},
	},

	// azure
	"cloudify.nodes.azure.ResourceGroup": {
		"name":     "examplegroup",
		"location": "eastus",
	},
	"cloudify.nodes.azure.network.VirtualNetwork": {
		"resource_group_name": "examplegroup",
		"name":                "examplenetwork",
		"location":            "eastus",
	},
	"cloudify.nodes.azure.network.Subnet": {
		"resource_group_name": "examplegroup",
		"name":                "examplesubnet",
		"location":            "eastus",
		"resource_config":     map[string]any{"addressPrefix": "10.10.4.0/24"},
	},
	"cloudify.nodes.azure.network.NetworkInterfaceCard": {
		"resource_group_name": "examplegroup",
		"location":            "eastus",
	},
	"cloudify.nodes.azure.network.IPConfiguration": {
		"resource_group_name": "examplegroup",
		"location":            "eastus",
		"resource_config":     map[string]any{"privateIPAllocationMethod": "Dynamic"},
	},
	"cloudify.nodes.azure.network.PublicIPAddress": {
		"resource_group_name": "examplegroup",
		"location":            "eastus",
		"resource_config":     map[string]any{"publicIPAllocationMethod": "Static"},
	},
	"cloudify.nodes.azure.storage.StorageAccount": {
		"resource_group_name": "examplegroup",
		"location":            "eastus",
		"resource_config":     map[string]any{"accountType": "Standard_LRS"},
	},
	"cloudify.nodes.azure.compute.AvailabilitySet": {
		"resource_group_name": "examplegroup",
		"name":                "exampleset",
		"location":            "eastus",
	},

	// gcp
	"cloudify.nodes.gcp.Network": {
		"auto_subnets": false,
	},
	"cloudify.nodes.gcp.SubNetwork": {
		"region": "us-east1",
		"subnet": "10.11.12.0/22",
	},
	"cloudify.nodes.gcp.FirewallRule": {
		"allowed": map[string]any{"tcp": []any{22}},
		"sources": []any{"0.0.0.0/0"},
	},
	"cloudify.nodes.gcp.Volume": {
		"image": "https://www.googleapis.com/compute/v1/projects/centos-cloud/global/images/centos-7-v20191210",
		"size":  20,
		"boot":  true,
	},
	"cloudify.nodes.gcp.Instance": {
		"agent_config": map[string]any{
			"install_method": "none",
			"key":            "",
			"user":           "cloudifyuser",
		},
		"use_public_ip": true,
		"zone":          "us-east1",
		"external_ip":   true,
	},
}

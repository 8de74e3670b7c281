// vpcrecon - VPC network inventory and reporting
package main

func main() {
	Execute()
}
